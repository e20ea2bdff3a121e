package loader

import (
	"strings"
	"testing"
)

const sampleCSV = `symbol,date,open,high,low,close,volume
AAPL,2024-01-02,184.1,186.0,183.5,185.6,48000000
AAPL,2024-01-03,185.0,185.9,183.0,184.2,45100000
MSFT,2024-01-02,372.0,377.1,371.2,376.0,21000000
`

func TestParse(t *testing.T) {
	bars, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("want 3 bars, got %d", len(bars))
	}
	if bars[0].Symbol != "AAPL" || bars[0].Close != 185.6 || bars[0].Volume != 48000000 {
		t.Fatalf("unexpected first bar: %+v", bars[0])
	}
	if bars[2].Symbol != "MSFT" {
		t.Fatalf("unexpected third bar: %+v", bars[2])
	}
}

func TestParseLowercasesSymbols(t *testing.T) {
	in := "symbol,date,open,high,low,close,volume\naapl,2024-01-02,1,1,1,1,1\n"
	bars, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bars[0].Symbol != "AAPL" {
		t.Fatalf("symbol should be uppercased, got %q", bars[0].Symbol)
	}
}

func TestParseRejectsBadHeader(t *testing.T) {
	in := "ticker,date,open,high,low,close,volume\nAAPL,2024-01-02,1,1,1,1,1\n"
	if _, err := Parse(strings.NewReader(in)); err == nil {
		t.Fatalf("expected header error")
	}
}

func TestParseRejectsBadRow(t *testing.T) {
	cases := []string{
		"AAPL,2024-13-45,1,1,1,1,1",
		"AAPL,2024-01-02,abc,1,1,1,1",
		"AAPL,2024-01-02,1,1,1,1,-5",
		",2024-01-02,1,1,1,1,1",
	}
	for _, row := range cases {
		in := "symbol,date,open,high,low,close,volume\n" + row + "\n"
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Fatalf("expected error for row %q", row)
		}
	}
}

func TestGroupBySymbolSorts(t *testing.T) {
	in := `symbol,date,open,high,low,close,volume
AAPL,2024-01-03,1,1,1,2,1
AAPL,2024-01-02,1,1,1,1,1
MSFT,2024-01-02,1,1,1,3,1
`
	bars, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	groups := GroupBySymbol(bars)
	if len(groups) != 2 {
		t.Fatalf("want 2 symbols, got %d", len(groups))
	}
	aapl := groups["AAPL"]
	if len(aapl) != 2 || !aapl[0].Date.Before(aapl[1].Date) {
		t.Fatalf("AAPL bars not sorted: %+v", aapl)
	}
}

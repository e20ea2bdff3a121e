package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/util"
)

var expectedHeader = []string{"symbol", "date", "open", "high", "low", "close", "volume"}

// Parse reads daily bars from CSV. The first row must be the header
// symbol,date,open,high,low,close,volume. Rows with missing or malformed
// fields fail the whole parse; upstream cleaning is expected to have
// dropped them already.
func Parse(r io.Reader) ([]models.DailyBar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var bars []models.DailyBar
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bar, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// LoadFile parses a CSV dataset from disk.
func LoadFile(path string) ([]models.DailyBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// GroupBySymbol splits bars into per-symbol chronological series.
func GroupBySymbol(bars []models.DailyBar) map[string][]models.DailyBar {
	out := make(map[string][]models.DailyBar)
	for _, b := range bars {
		out[b.Symbol] = append(out[b.Symbol], b)
	}
	for sym := range out {
		s := out[sym]
		sort.Slice(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
	}
	return out
}

func checkHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(expectedHeader))
	}
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) != expectedHeader[i] {
			return fmt.Errorf("header column %d is %q, want %q", i+1, h, expectedHeader[i])
		}
	}
	return nil
}

func parseRecord(rec []string) (models.DailyBar, error) {
	var bar models.DailyBar
	if len(rec) != len(expectedHeader) {
		return bar, fmt.Errorf("record has %d columns, want %d", len(rec), len(expectedHeader))
	}

	bar.Symbol = strings.ToUpper(strings.TrimSpace(rec[0]))
	if bar.Symbol == "" {
		return bar, fmt.Errorf("empty symbol")
	}

	date, ok := util.ParseDate(rec[1])
	if !ok {
		return bar, fmt.Errorf("bad date %q", rec[1])
	}
	bar.Date = date

	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+2]), 64)
		if err != nil {
			return bar, fmt.Errorf("bad %s %q", f.name, rec[i+2])
		}
		*f.dst = v
	}

	vol, err := strconv.ParseInt(strings.TrimSpace(rec[6]), 10, 64)
	if err != nil || vol < 0 {
		return bar, fmt.Errorf("bad volume %q", rec[6])
	}
	bar.Volume = vol

	return bar, nil
}

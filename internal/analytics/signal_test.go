package analytics

import (
	"testing"

	"EquityLens/internal/domain/models"
)

func volPtr(v float64) *float64 { return &v }

func TestClassifyBranches(t *testing.T) {
	cases := []struct {
		name   string
		change float64
		vol    *float64
		want   models.Signal
	}{
		{"strong gain low vol", 33.1, volPtr(0), models.SignalBuy},
		{"strong gain at buy boundary", 25, volPtr(1.99), models.SignalBuy},
		{"strong gain vol too high for buy", 25, volPtr(3), models.SignalHold},
		{"mild gain calm", 5, volPtr(4), models.SignalHold},
		{"mild gain vol at hold boundary", 5, volPtr(5), models.SignalHold},
		{"gain but turbulent", 10, volPtr(8), models.SignalHold},
		{"flat", 0, volPtr(1), models.SignalSell},
		{"loss", -20, volPtr(0.5), models.SignalSell},
		{"loss high vol", -20, volPtr(50), models.SignalSell},
		{"gain no volatility defined", 30, nil, models.SignalHold},
		{"loss no volatility defined", -5, nil, models.SignalSell},
	}
	for _, tc := range cases {
		if got := Classify(tc.change, tc.vol); got != tc.want {
			t.Fatalf("%s: want %s got %s", tc.name, tc.want, got)
		}
	}
}

func TestTrendOf(t *testing.T) {
	if TrendOf(0.01) != models.TrendUpward {
		t.Fatalf("positive change must be upward")
	}
	if TrendOf(0) != models.TrendDownward {
		t.Fatalf("zero change must be downward")
	}
	if TrendOf(-3) != models.TrendDownward {
		t.Fatalf("negative change must be downward")
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"EquityLens/internal/analytics"
	"EquityLens/internal/domain/models"
	"EquityLens/internal/usecase"
	applogger "EquityLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

type memBarStore struct {
	bars map[string][]models.DailyBar
}

func (m *memBarStore) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error) {
	return m.bars[symbol], nil
}

func (m *memBarStore) GetLatestNBars(ctx context.Context, symbol string, n int) ([]models.DailyBar, error) {
	bars := m.bars[symbol]
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

func (m *memBarStore) ListSymbols(ctx context.Context) ([]string, error) {
	var out []string
	for s := range m.bars {
		out = append(out, s)
	}
	return out, nil
}

func newTestHandler(t *testing.T) (*SummaryEchoHandler, *echo.Echo) {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(symbol string, closes ...float64) []models.DailyBar {
		bars := make([]models.DailyBar, len(closes))
		for i, c := range closes {
			bars[i] = models.DailyBar{
				Symbol: symbol, Date: base.AddDate(0, 0, i),
				Open: c, High: c, Low: c, Close: c, Volume: 100,
			}
		}
		return bars
	}
	store := &memBarStore{bars: map[string][]models.DailyBar{
		"AAPL": mk("AAPL", 100, 110, 121, 133.1),
		"MSFT": mk("MSFT", 100, 90, 80),
	}}

	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	windows := analytics.DefaultWindows()
	h := NewSummaryEchoHandler(
		l,
		usecase.NewAnalyzeUseCase(store, windows, nil, 0),
		usecase.NewBatchAnalyzeUseCase(store, windows),
		usecase.NewBarsUseCase(store),
	)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func TestSummaryEndpoint(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary?symbol=AAPL", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Status int                  `json:"status"`
		Data   models.SymbolSummary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Signal != models.SignalBuy {
		t.Fatalf("want BUY got %s", body.Data.Signal)
	}
	if body.Data.Trend != models.TrendUpward {
		t.Fatalf("want UPWARD got %s", body.Data.Trend)
	}
}

func TestSummaryMissingSymbol(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusBadRequest {
		t.Fatalf("want status 400 in body, got %d", body.Status)
	}
}

func TestSummaryUnknownSymbol(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary?symbol=GHOST", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusNotFound {
		t.Fatalf("want status 404 in body, got %d", body.Status)
	}
}

func TestSummaryAllEndpoint(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/summary/all", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", rec.Code)
	}
	var body struct {
		Data models.BatchSummary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Symbols) != 2 {
		t.Fatalf("want 2 symbols, got %d", len(body.Data.Symbols))
	}
}

func TestExportEndpoint(t *testing.T) {
	_, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/export?symbols=MSFT", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("want text/csv got %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Symbol,Number of Trading Days,Lowest Price") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "MSFT,3,") {
		t.Fatalf("unexpected row: %s", lines[1])
	}
	if !strings.Contains(lines[1], "SELL") {
		t.Fatalf("MSFT row should carry SELL: %s", lines[1])
	}
}

func TestHealthEndpoint(t *testing.T) {
	h, e := newTestHandler(t)
	h.SetHealthCheck(func(c echo.Context) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", rec.Code)
	}
}

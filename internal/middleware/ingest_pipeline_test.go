package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"EquityLens/internal/domain/models"
)

type stubProc struct {
	mu    sync.Mutex
	seen  []*models.DailyBar
	fail  bool
	calls int
}

func (s *stubProc) Process(ctx context.Context, b *models.DailyBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return errors.New("downstream down")
	}
	s.seen = append(s.seen, b)
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordBarsStored(backend, symbol string)  {}
func (noopMetrics) RecordError(kind string)                  {}
func (noopMetrics) RecordLastClose(symbol string, c float64) {}
func (noopMetrics) RecordLatency(op string, s float64)       {}

func validTestBar() *models.DailyBar {
	return &models.DailyBar{
		Symbol: "AAPL",
		Date:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:   100, High: 105, Low: 99, Close: 104,
		Volume: 1000,
	}
}

func TestPipelineForwardsValidBar(t *testing.T) {
	proc := &stubProc{}
	p := NewIngestPipeline(proc, noopMetrics{})

	if err := p.Process(context.Background(), validTestBar()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.seen) != 1 {
		t.Fatalf("want 1 forwarded bar, got %d", len(proc.seen))
	}
}

func TestPipelineRejectsInvalidBar(t *testing.T) {
	proc := &stubProc{}
	p := NewIngestPipeline(proc, noopMetrics{})

	cases := []*models.DailyBar{
		nil,
		{Date: time.Now(), Close: 1},
		{Symbol: "AAPL", Close: 1},
		{Symbol: "AAPL", Date: time.Now(), Close: -1},
		{Symbol: "AAPL", Date: time.Now(), High: 1, Low: 2},
	}
	for i, b := range cases {
		if err := p.Process(context.Background(), b); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if len(proc.seen) != 0 {
		t.Fatalf("invalid bars must not reach downstream")
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &stubProc{fail: true}
	p := NewIngestPipeline(proc, noopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), validTestBar()); err == nil {
		t.Fatalf("expected downstream error")
	}

	// recover downstream and let the background flush drain the buffer
	proc.mu.Lock()
	proc.fail = false
	proc.mu.Unlock()

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		proc.mu.Lock()
		n := len(proc.seen)
		proc.mu.Unlock()
		if n == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("buffered bar was never flushed")
}

func TestPipelineTransform(t *testing.T) {
	proc := &stubProc{}
	p := NewIngestPipeline(proc, noopMetrics{}, WithTransform(func(b *models.DailyBar) *models.DailyBar {
		b.Symbol = "NORM"
		return b
	}))

	if err := p.Process(context.Background(), validTestBar()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.seen[0].Symbol != "NORM" {
		t.Fatalf("transform not applied, got %q", proc.seen[0].Symbol)
	}
}

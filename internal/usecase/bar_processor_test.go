package usecase

import (
	"context"
	"errors"
	"testing"

	"EquityLens/internal/domain/models"
)

type fakePublisher struct {
	published int
	fail      bool
}

func (f *fakePublisher) Publish(ctx context.Context, b *models.DailyBar) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.published++
	return nil
}

func (f *fakePublisher) PublishBatch(ctx context.Context, bars []*models.DailyBar) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.published += len(bars)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeStorage struct {
	stored  int
	batches int
}

func (f *fakeStorage) Init(ctx context.Context) error { return nil }

func (f *fakeStorage) Store(ctx context.Context, b *models.DailyBar) error {
	f.stored++
	return nil
}

func (f *fakeStorage) StoreBatch(ctx context.Context, bars []*models.DailyBar) error {
	f.stored += len(bars)
	f.batches++
	return nil
}

func (f *fakeStorage) Health(ctx context.Context) error { return nil }
func (f *fakeStorage) Close() error                     { return nil }

type fakeMetrics struct {
	errors []string
}

func (f *fakeMetrics) RecordBarsStored(backend, symbol string)  {}
func (f *fakeMetrics) RecordError(kind string)                  { f.errors = append(f.errors, kind) }
func (f *fakeMetrics) RecordLastClose(symbol string, c float64) {}
func (f *fakeMetrics) RecordLatency(op string, s float64)       {}

func ptrBars(bars []models.DailyBar) []*models.DailyBar {
	out := make([]*models.DailyBar, len(bars))
	for i := range bars {
		out[i] = &bars[i]
	}
	return out
}

func TestProcessRoutesToStorage(t *testing.T) {
	st := &fakeStorage{}
	p := NewBarProcessor(&fakePublisher{}, st, &fakeMetrics{}, "clickhouse", 0)

	bar := testBars("AAPL", 100)[0]
	if err := p.Process(context.Background(), &bar); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.stored != 1 {
		t.Fatalf("want 1 stored, got %d", st.stored)
	}
}

func TestProcessRoutesToKafka(t *testing.T) {
	pub := &fakePublisher{}
	p := NewBarProcessor(pub, &fakeStorage{}, &fakeMetrics{}, "kafka", 0)

	bar := testBars("AAPL", 100)[0]
	if err := p.Process(context.Background(), &bar); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pub.published != 1 {
		t.Fatalf("want 1 published, got %d", pub.published)
	}
}

func TestProcessUnknownBackend(t *testing.T) {
	m := &fakeMetrics{}
	p := NewBarProcessor(&fakePublisher{}, &fakeStorage{}, m, "postgres", 0)

	bar := testBars("AAPL", 100)[0]
	if err := p.Process(context.Background(), &bar); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if len(m.errors) == 0 {
		t.Fatalf("expected error metric")
	}
}

func TestProcessBatchChunks(t *testing.T) {
	st := &fakeStorage{}
	p := NewBarProcessor(&fakePublisher{}, st, &fakeMetrics{}, "clickhouse", 2)

	bars := ptrBars(testBars("AAPL", 1, 2, 3, 4, 5))
	if err := p.ProcessBatch(context.Background(), bars); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.stored != 5 {
		t.Fatalf("want 5 stored, got %d", st.stored)
	}
	if st.batches != 3 {
		t.Fatalf("want 3 chunks, got %d", st.batches)
	}
}

func TestProcessBatchFailureRecordsError(t *testing.T) {
	m := &fakeMetrics{}
	p := NewBarProcessor(&fakePublisher{fail: true}, &fakeStorage{}, m, "kafka", 0)

	bars := ptrBars(testBars("AAPL", 1, 2))
	if err := p.ProcessBatch(context.Background(), bars); err == nil {
		t.Fatalf("expected error from failing publisher")
	}
	if len(m.errors) == 0 {
		t.Fatalf("expected error metric")
	}
}

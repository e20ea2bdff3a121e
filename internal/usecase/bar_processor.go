package usecase

import (
	"context"
	"fmt"
	"time"

	"EquityLens/internal/domain/models"
	drepo "EquityLens/internal/domain/repository"
)

// BarProcessor routes incoming daily bars to the configured backend.
type BarProcessor struct {
	pub     drepo.Publisher
	store   drepo.Storage
	metrics drepo.Metrics
	backend string
	batchSz int
}

// NewBarProcessor creates a new BarProcessor instance.
func NewBarProcessor(
	pub drepo.Publisher,
	store drepo.Storage,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
) *BarProcessor {
	return &BarProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
	}
}

// Process routes a single bar to the configured backend.
func (p *BarProcessor) Process(ctx context.Context, b *models.DailyBar) error {
	if b == nil {
		return fmt.Errorf("bar is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, b)
	case "clickhouse":
		err = p.store.Store(ctx, b)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process bar: %w", err)
	}

	p.metrics.RecordBarsStored(p.backend, b.Symbol)
	p.metrics.RecordLastClose(b.Symbol, b.Close)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple bars in backend-sized chunks.
func (p *BarProcessor) ProcessBatch(ctx context.Context, bars []*models.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	start := time.Now()
	chunk := p.batchSz
	if chunk <= 0 {
		chunk = len(bars)
	}

	for off := 0; off < len(bars); off += chunk {
		end := off + chunk
		if end > len(bars) {
			end = len(bars)
		}
		part := bars[off:end]

		var err error
		switch p.backend {
		case "kafka":
			err = p.pub.PublishBatch(ctx, part)
		case "clickhouse":
			err = p.store.StoreBatch(ctx, part)
		default:
			err = fmt.Errorf("unknown backend: %s", p.backend)
		}
		if err != nil {
			p.metrics.RecordError("process_batch")
			return fmt.Errorf("process batch: %w", err)
		}
	}

	for _, b := range bars {
		p.metrics.RecordBarsStored(p.backend, b.Symbol)
	}
	if last := bars[len(bars)-1]; last != nil {
		p.metrics.RecordLastClose(last.Symbol, last.Close)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *BarProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}

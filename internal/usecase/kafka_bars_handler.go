package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"EquityLens/internal/domain/models"
	domrepo "EquityLens/internal/domain/repository"
	mid "EquityLens/internal/middleware"
	pkgkafka "EquityLens/pkg/kafka"
	"EquityLens/pkg/util"
)

// KafkaBarsHandler consumes daily bar events from Kafka and writes them to
// storage, going through the ingest pipeline when one is attached.
type KafkaBarsHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
	pipe    *mid.IngestPipeline
}

func NewKafkaBarsHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics, pipe *mid.IngestPipeline) *KafkaBarsHandler {
	return &KafkaBarsHandler{topic: topic, storage: storage, metrics: metrics, pipe: pipe}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, date, open, high, low, close, volume}
func (h *KafkaBarsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.Symbol == "" {
		h.metrics.RecordError("consumer_validate")
		return fmt.Errorf("bar event missing symbol")
	}
	date, ok := util.ParseDate(m.Date)
	if !ok {
		h.metrics.RecordError("consumer_validate")
		return fmt.Errorf("bar event bad date %q", m.Date)
	}

	bar := &models.DailyBar{
		Symbol: m.Symbol,
		Date:   date,
		Open:   m.Open,
		High:   m.High,
		Low:    m.Low,
		Close:  m.Close,
		Volume: m.Volume,
	}

	start := time.Now()
	if h.pipe != nil {
		// the pipeline's processor records storage metrics itself
		err := h.pipe.Process(ctx, bar)
		h.metrics.RecordLatency("consume", time.Since(start).Seconds())
		return err
	}

	err := h.storage.Store(ctx, bar)
	h.metrics.RecordLatency("consume", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordBarsStored("clickhouse", m.Symbol)
	h.metrics.RecordLastClose(m.Symbol, m.Close)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaBarsHandler)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"EquityLens/internal/domain/models"
	"EquityLens/internal/domain/repository"
	pkgkafka "EquityLens/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, b *models.DailyBar) error {
	q := fmt.Sprintf("INSERT INTO %s (symbol, day, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		b.Symbol,
		b.Date,
		b.Open,
		b.High,
		b.Low,
		b.Close,
		uint64(b.Volume),
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, bars []*models.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, b := range bars[start:end] {
			if b == nil || b.Symbol == "" || b.Date.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				b.Symbol,
				b.Date,
				b.Open,
				b.High,
				b.Low,
				b.Close,
				uint64(b.Volume),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, day, open, high, low, close, volume) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaBarPublisher implements Publisher for Kafka.
type KafkaBarPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaBarPublisher creates Kafka publisher.
func NewKafkaBarPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaBarPublisher{producer: producer, topic: topic}
}

func (p *KafkaBarPublisher) Publish(ctx context.Context, b *models.DailyBar) error {
	return p.producer.Publish(ctx, p.topic, []byte(b.Symbol), barEvent(b))
}

func (p *KafkaBarPublisher) PublishBatch(ctx context.Context, bars []*models.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(bars))
	for i, b := range bars {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(b.Symbol),
			Value: barEvent(b),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaBarPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func barEvent(b *models.DailyBar) map[string]interface{} {
	return map[string]interface{}{
		"symbol": b.Symbol,
		"date":   b.Date.Format("2006-01-02"),
		"open":   b.Open,
		"high":   b.High,
		"low":    b.Low,
		"close":  b.Close,
		"volume": b.Volume,
	}
}

package di

import (
	"context"
	"fmt"
	"time"

	"EquityLens/internal/domain/repository"
	mid "EquityLens/internal/middleware"
	internalrepo "EquityLens/internal/repository"
	"EquityLens/internal/usecase"
	pkgch "EquityLens/pkg/clickhouse"
	"EquityLens/pkg/config"
	pkgkafka "EquityLens/pkg/kafka"
	applogger "EquityLens/pkg/logger"
	"EquityLens/pkg/metrics"
	"EquityLens/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS equitylens",
		"CREATE TABLE IF NOT EXISTS equitylens.daily_bars (symbol String, day Date, open Float64, high Float64, low Float64, close Float64, volume UInt64) ENGINE=ReplacingMergeTree ORDER BY (symbol, day)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideBarStorage creates ClickHouse storage repository.
func ProvideBarStorage(chClient *pkgch.Client) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), "equitylens.daily_bars")
}

// ProvideBarPublisher creates Kafka publisher repository.
func ProvideBarPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaBarPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaBarsHandler registers handler for the bars topic. Consumed
// bars always land in storage, buffered through the ingest pipeline so a
// ClickHouse hiccup does not drop messages.
func ProvideKafkaBarsHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	storeProc := usecase.NewBarProcessor(nil, store, metrics, "clickhouse", cfg.Ingest.BatchSize)
	pipe := mid.NewIngestPipeline(storeProc, metrics,
		mid.WithBufferSize(2000),
	)
	pipe.Start(context.Background())
	return usecase.NewKafkaBarsHandler(cfg.Kafka.Topic, store, metrics, pipe)
}

// ProvideBarProcessor creates the bar processor use case.
func ProvideBarProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.BarProcessor {
	return usecase.NewBarProcessor(
		pub,
		store,
		metrics,
		cfg.Ingest.Backend,
		cfg.Ingest.BatchSize,
	)
}

// ProvideDatasetImporter creates the CSV importer use case.
func ProvideDatasetImporter(proc *usecase.BarProcessor, metrics repository.Metrics) *usecase.DatasetImporter {
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	return usecase.NewDatasetImporter(proc, metrics, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	importer *usecase.DatasetImporter,
	proc *usecase.BarProcessor,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	chClient *pkgch.Client,
) *server.App {
	app := server.New(cfg, importer, consumer, kh, chClient)
	app.BarProc = proc
	return app
}

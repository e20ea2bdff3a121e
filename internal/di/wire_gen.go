// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"EquityLens/pkg/config"
	"EquityLens/pkg/server"
)

// Injectors from wire.go:

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	publisher := ProvideBarPublisher(producer, cfg)
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	storage := ProvideBarStorage(client)
	metrics := ProvideMetrics()
	barProcessor := ProvideBarProcessor(publisher, storage, metrics, cfg)
	datasetImporter := ProvideDatasetImporter(barProcessor, metrics)
	consumer, err := ProvideKafkaConsumer(cfg)
	if err != nil {
		return nil, err
	}
	kafkaBarsHandler := ProvideKafkaBarsHandler(storage, metrics, cfg)
	app := ProvideApp(cfg, datasetImporter, barProcessor, consumer, kafkaBarsHandler, client)
	return app, nil
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"EquityLens/internal/domain/models"
	drepo "EquityLens/internal/domain/repository"
	"EquityLens/internal/loader"
	applogger "EquityLens/pkg/logger"
)

// DatasetImporter loads a CSV dataset from disk and pushes it through the
// bar processor into the configured backend.
type DatasetImporter struct {
	proc    *BarProcessor
	metrics drepo.Metrics
	logger  *applogger.Logger
}

func NewDatasetImporter(proc *BarProcessor, metrics drepo.Metrics, logger *applogger.Logger) *DatasetImporter {
	return &DatasetImporter{proc: proc, metrics: metrics, logger: logger}
}

// ImportFile parses the dataset at path and stores every bar. Returns the
// number of bars imported.
func (i *DatasetImporter) ImportFile(ctx context.Context, path string) (int, error) {
	start := time.Now()

	bars, err := loader.LoadFile(path)
	if err != nil {
		i.metrics.RecordError("import_parse")
		return 0, fmt.Errorf("import %s: %w", path, err)
	}
	if len(bars) == 0 {
		return 0, nil
	}

	groups := loader.GroupBySymbol(bars)
	for _, series := range groups {
		batch := make([]*models.DailyBar, 0, len(series))
		for idx := range series {
			batch = append(batch, &series[idx])
		}
		if err := i.proc.ProcessBatch(ctx, batch); err != nil {
			i.metrics.RecordError("import_store")
			return 0, fmt.Errorf("import %s: %w", path, err)
		}
	}

	i.metrics.RecordLatency("import_file", time.Since(start).Seconds())
	i.logger.Info("dataset imported",
		applogger.String("path", path),
		applogger.Int("bars", len(bars)),
		applogger.Int("symbols", len(groups)),
		applogger.Duration("took", time.Since(start)),
	)
	return len(bars), nil
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/laguna-water-quality/internal/dashboard"
	"github.com/couchcryptid/laguna-water-quality/internal/domain"
)

// DatasetBuilder implements Transformer: it decodes the native dataset,
// merges the secondary export and attaches station locations.
type DatasetBuilder struct {
	layout domain.ColumnLayout
	logger *slog.Logger
}

// NewTransformer creates a DatasetBuilder for the given secondary layout.
func NewTransformer(layout domain.ColumnLayout, logger *slog.Logger) *DatasetBuilder {
	return &DatasetBuilder{layout: layout, logger: logger}
}

// Transform builds the dataset. Only an undecodable native dataset is an
// error; secondary and location problems degrade to partial data.
func (b *DatasetBuilder) Transform(_ context.Context, bundle domain.RawBundle) (*dashboard.Dataset, error) {
	native, err := domain.DecodeCollection(bytes.NewReader(bundle.Native))
	if err != nil {
		return nil, fmt.Errorf("decode native dataset: %w", err)
	}

	merged, report := native, domain.IngestReport{Skipped: true, Reason: "no secondary source"}
	if len(bytes.TrimSpace(bundle.Secondary)) > 0 {
		merged, report = domain.Merge(native, string(bundle.Secondary), b.layout)
	}

	locations, err := domain.DecodeStationLocations(bundle.Locations)
	if err != nil {
		b.logger.Warn("station locations unreadable, map will be empty", "error", err)
		locations = nil
	}

	return dashboard.NewDataset(bundle.Version(), merged, locations, report, bundle.ReadAt), nil
}

package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"sheetmap/internal/domain"
	"sheetmap/internal/sheet"
)

// DatasetService stores the input and output datasets.
type DatasetService struct {
	repo domain.BlobRepository
	auditor
}

// NewDatasetService creates a DatasetService.
func NewDatasetService(repo domain.BlobRepository, audit domain.AuditRepository, logger *slog.Logger) *DatasetService {
	return &DatasetService{repo: repo, auditor: auditor{repo: audit, logger: logger}}
}

// Get returns the stored dataset, or an empty one if none was saved.
func (s *DatasetService) Get(ctx context.Context, kind domain.DatasetKind) (Versioned[domain.Dataset], error) {
	return datasetDoc(kind).get(ctx, s.repo)
}

// Save replaces the dataset.
func (s *DatasetService) Save(ctx context.Context, kind domain.DatasetKind, ds domain.Dataset, ifVersion string) (Versioned[domain.Dataset], error) {
	if err := ds.Validate(); err != nil {
		return Versioned[domain.Dataset]{}, err
	}
	if ds.Rows == nil {
		ds.Rows = []domain.Record{}
	}
	out, err := datasetDoc(kind).put(ctx, s.repo, ds, ifVersion)
	s.logAudit(ctx, "SAVE_DATASET", domain.DatasetKey(kind),
		fmt.Sprintf("saved %s dataset with %d headers and %d rows", kind, len(ds.Headers), len(ds.Rows)), err)
	return out, err
}

// Upload decodes a spreadsheet and saves it as the dataset.
func (s *DatasetService) Upload(ctx context.Context, kind domain.DatasetKind, filename string, r io.Reader, opts sheet.Options, ifVersion string) (Versioned[domain.Dataset], error) {
	g, err := sheet.DecodeFile(filename, r, opts)
	if err != nil {
		return Versioned[domain.Dataset]{}, err
	}
	return s.Save(ctx, kind, g.Dataset(), ifVersion)
}

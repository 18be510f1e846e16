package session

import (
	"context"
	"fmt"
	"io"

	"sheetmap/internal/domain"
	"sheetmap/internal/sheet"
)

// ImportDataset decodes a spreadsheet locally, stores it as the input or
// output dataset, and only then replaces the in-memory copy. A decode or
// save failure leaves the session unchanged.
func (s *Session) ImportDataset(ctx context.Context, kind domain.DatasetKind, filename string, r io.Reader, opts sheet.Options) (domain.Dataset, error) {
	g, err := sheet.DecodeFile(filename, r, opts)
	if err != nil {
		return domain.Dataset{}, err
	}
	ds := g.Dataset()

	key := domain.DatasetKey(kind)
	version, err := s.backend.SaveDataset(ctx, kind, ds, s.Version(key))
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("save %s: %w", key, err)
	}

	s.mu.Lock()
	if kind == domain.DatasetOutput {
		s.st.output = ds
	} else {
		s.st.input = ds
	}
	s.st.versions[key] = version
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset imported", "kind", string(kind), "file", filename,
		"headers", len(ds.Headers), "rows", len(ds.Rows))
	return ds, nil
}

// Dataset returns the current input or output dataset.
func (s *Session) Dataset(kind domain.DatasetKind) domain.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == domain.DatasetOutput {
		return s.st.output
	}
	return s.st.input
}

// LookupRows returns the rows of a dataset whose cell under header equals
// value exactly. An unknown header is logged and yields no rows.
func (s *Session) LookupRows(ctx context.Context, kind domain.DatasetKind, header string, value any) []domain.Record {
	rows, w := s.Dataset(kind).Lookup(header, value)
	s.warn(ctx, w)
	return rows
}

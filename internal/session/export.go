package session

import (
	"context"
	"io"

	"sheetmap/internal/domain"
	"sheetmap/internal/sheet"
)

// BuildOutput fills the output headers from the input rows through the
// mapping table. Unmapped output headers fall back to the default field
// value for that header; cells with nothing to fill are left out.
func (s *Session) BuildOutput(ctx context.Context) domain.Dataset {
	s.mu.Lock()
	headers := append([]string{}, s.st.output.Headers...)
	in := s.st.input
	mapping := s.st.mapping
	sources := make(map[string]string, len(headers))
	for _, h := range headers {
		if src, ok := mapping.InputFor(h); ok && in.HasHeader(src) {
			sources[h] = src
		}
	}
	defaults := make(map[string]string)
	for _, h := range headers {
		if _, ok := sources[h]; ok {
			continue
		}
		if v, w := domain.ResolveFieldValue(h, s.st.fieldValues); w == nil {
			defaults[h] = v
		}
	}
	s.mu.Unlock()

	rows := make([]domain.Record, 0, len(in.Rows))
	for _, src := range in.Rows {
		rec := domain.Record{}
		for _, h := range headers {
			if from, ok := sources[h]; ok {
				if v, ok := src[from]; ok {
					rec[h] = v
				}
				continue
			}
			if v, ok := defaults[h]; ok {
				rec[h] = v
			}
		}
		rows = append(rows, rec)
	}

	s.logger.DebugContext(ctx, "output built", "rows", len(rows),
		"mapped", len(sources), "defaulted", len(defaults))
	return domain.Dataset{Headers: headers, Rows: rows}
}

// Export writes the built output dataset in format.
func (s *Session) Export(ctx context.Context, w io.Writer, format sheet.Format) error {
	return sheet.Write(w, format, s.BuildOutput(ctx))
}

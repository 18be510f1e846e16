package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"sheetmap/internal/domain"
	"sheetmap/internal/sheet"
)

// DefaultFieldsService stores the default-fields file and the saved
// header-to-value choices made against it.
type DefaultFieldsService struct {
	repo domain.BlobRepository
	auditor
}

// NewDefaultFieldsService creates a DefaultFieldsService.
func NewDefaultFieldsService(repo domain.BlobRepository, audit domain.AuditRepository, logger *slog.Logger) *DefaultFieldsService {
	return &DefaultFieldsService{repo: repo, auditor: auditor{repo: audit, logger: logger}}
}

// Get returns the header-keyed default-fields blob.
func (s *DefaultFieldsService) Get(ctx context.Context) (Versioned[domain.ColumnBlob], error) {
	return defaultFieldsDoc.get(ctx, s.repo)
}

// Save replaces the default-fields blob.
func (s *DefaultFieldsService) Save(ctx context.Context, blob domain.ColumnBlob, ifVersion string) (Versioned[domain.ColumnBlob], error) {
	out, err := defaultFieldsDoc.put(ctx, s.repo, blob, ifVersion)
	s.logAudit(ctx, "SAVE_DEFAULT_FIELDS", domain.KeyDefaultFields, fmt.Sprintf("saved %d default-field columns", blob.Len()), err)
	return out, err
}

// Upload decodes a spreadsheet into header-keyed form and saves it. Empty
// rows are kept so columns stay aligned with the sheet.
func (s *DefaultFieldsService) Upload(ctx context.Context, filename string, r io.Reader, opts sheet.Options, ifVersion string) (Versioned[domain.ColumnBlob], error) {
	g, err := sheet.DecodeFile(filename, r, opts)
	if err != nil {
		return Versioned[domain.ColumnBlob]{}, err
	}
	return s.Save(ctx, g.Columns(), ifVersion)
}

// Values returns the filtered values of one default-fields column.
func (s *DefaultFieldsService) Values(ctx context.Context, header, fragment string) ([]string, error) {
	cur, err := defaultFieldsDoc.get(ctx, s.repo)
	if err != nil {
		return nil, err
	}
	col, ok := cur.Value.Column(header)
	if !ok {
		s.logger.WarnContext(ctx, "default fields lookup", "warning", domain.UnknownHeaderWarning(header).String())
		return []string{}, nil
	}
	return domain.FilterValues(col, fragment), nil
}

// Mappings returns the saved header-to-value choices.
func (s *DefaultFieldsService) Mappings(ctx context.Context) (Versioned[[]domain.FieldValue], error) {
	return fieldValuesDoc.get(ctx, s.repo)
}

// SaveMappings replaces the saved header-to-value choices.
func (s *DefaultFieldsService) SaveMappings(ctx context.Context, values []domain.FieldValue, ifVersion string) (Versioned[[]domain.FieldValue], error) {
	if values == nil {
		values = []domain.FieldValue{}
	}
	out, err := fieldValuesDoc.put(ctx, s.repo, values, ifVersion)
	s.logAudit(ctx, "SAVE_FIELD_VALUES", domain.KeyDefaultFieldValues, fmt.Sprintf("saved %d field values", len(values)), err)
	return out, err
}

// Resolution is the outcome of resolving one header against the saved
// field values.
type Resolution struct {
	Value   string `json:"value"`
	Matched bool   `json:"matched"`
}

// Resolve picks the saved value whose header matches header. A miss is
// logged as a warning and reported as unmatched.
func (s *DefaultFieldsService) Resolve(ctx context.Context, header string) (Resolution, error) {
	cur, err := fieldValuesDoc.get(ctx, s.repo)
	if err != nil {
		return Resolution{}, err
	}
	v, warn := domain.ResolveFieldValue(header, cur.Value)
	if warn != nil {
		s.logger.WarnContext(ctx, "default fields resolve", "warning", warn.String())
		return Resolution{}, nil
	}
	return Resolution{Value: v, Matched: true}, nil
}

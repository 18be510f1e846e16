// Package session holds one user's working state: the two datasets, the
// header mapping, lookup tables, default fields and rules, kept in sync with
// a sheetmap server.
//
// A Session is safe for concurrent use. Loads are all-or-nothing: a failed
// fetch leaves the previous state untouched. Writes are conditional on the
// version last seen for each document, so a concurrent change elsewhere
// surfaces as *domain.VersionConflictError and the caller reloads.
package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"sheetmap/internal/domain"
	"sheetmap/pkg/client"
)

// Backend is the persistence API a Session talks to. *client.Client
// implements it.
type Backend interface {
	GetDataset(ctx context.Context, kind domain.DatasetKind) (domain.Dataset, string, error)
	SaveDataset(ctx context.Context, kind domain.DatasetKind, ds domain.Dataset, ifMatch string) (string, error)

	GetMappings(ctx context.Context) ([]domain.MappingEntry, string, error)
	SaveMappings(ctx context.Context, entries []domain.MappingEntry, ifMatch string) (string, error)

	GetLookups(ctx context.Context) (*domain.LookupRegistry, string, error)
	RegisterLookup(ctx context.Context, owner string, table domain.LookupTable) (*domain.LookupRegistry, string, error)
	DeleteLookup(ctx context.Context, owner string) (*domain.LookupRegistry, string, error)

	GetDefaultFields(ctx context.Context) (domain.ColumnBlob, string, error)
	GetFieldMappings(ctx context.Context) ([]domain.FieldValue, string, error)
	SaveFieldMappings(ctx context.Context, values []domain.FieldValue, ifMatch string) (string, error)

	GetDefaultRules(ctx context.Context) ([]domain.Rule, error)
	GetUserRules(ctx context.Context) ([]domain.Rule, string, error)
	SaveUserRules(ctx context.Context, rules []domain.Rule, ifMatch string) (string, error)
}

var _ Backend = (*client.Client)(nil)

// state is everything a Load replaces.
type state struct {
	input, output domain.Dataset
	mapping       *domain.MappingTable
	lookups       *domain.LookupRegistry
	fields        domain.ColumnBlob
	fieldValues   []domain.FieldValue
	rules         domain.RuleRegistry
	versions      map[string]string // blob key -> last seen version
}

func emptyState() state {
	empty := domain.Dataset{Headers: []string{}, Rows: []domain.Record{}}
	return state{
		input:    empty,
		output:   empty,
		mapping:  &domain.MappingTable{},
		lookups:  &domain.LookupRegistry{},
		versions: map[string]string{},
	}
}

// Session is one working session against a Backend.
type Session struct {
	backend Backend
	logger  *slog.Logger

	mu sync.Mutex
	st state
}

// New creates an empty session. Call Load to fetch the stored state.
func New(backend Backend, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{backend: backend, logger: logger, st: emptyState()}
}

// Version returns the last seen version of the document under key.
func (s *Session) Version(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.versions[key]
}

func (s *Session) warn(ctx context.Context, w *domain.Warning) {
	if w != nil {
		s.logger.WarnContext(ctx, w.Message, "kind", string(w.Kind), "header", w.Header)
	}
}

package session

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"sheetmap/internal/domain"
)

// Load fetches every document concurrently and replaces the session state
// only when all fetches succeed. On error the previous state is kept.
func (s *Session) Load(ctx context.Context) error {
	next := emptyState()
	var (
		userRules    []domain.Rule
		defaultRules []domain.Rule
		mappings     []domain.MappingEntry

		inputV, outputV, mappingsV, lookupsV string
		fieldsV, fieldValuesV, userRulesV    string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	g.Go(func() (err error) {
		next.input, inputV, err = s.backend.GetDataset(gctx, domain.DatasetInput)
		return wrapLoad(domain.KeyInputDataset, err)
	})
	g.Go(func() (err error) {
		next.output, outputV, err = s.backend.GetDataset(gctx, domain.DatasetOutput)
		return wrapLoad(domain.KeyOutputDataset, err)
	})
	g.Go(func() (err error) {
		mappings, mappingsV, err = s.backend.GetMappings(gctx)
		return wrapLoad(domain.KeyMappings, err)
	})
	g.Go(func() (err error) {
		next.lookups, lookupsV, err = s.backend.GetLookups(gctx)
		return wrapLoad(domain.KeyLookups, err)
	})
	g.Go(func() (err error) {
		next.fields, fieldsV, err = s.backend.GetDefaultFields(gctx)
		return wrapLoad(domain.KeyDefaultFields, err)
	})
	g.Go(func() (err error) {
		next.fieldValues, fieldValuesV, err = s.backend.GetFieldMappings(gctx)
		return wrapLoad(domain.KeyDefaultFieldValues, err)
	})
	g.Go(func() (err error) {
		defaultRules, err = s.backend.GetDefaultRules(gctx)
		return wrapLoad(domain.KeyDefaultRules, err)
	})
	g.Go(func() (err error) {
		userRules, userRulesV, err = s.backend.GetUserRules(gctx)
		return wrapLoad(domain.KeyUserRules, err)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	next.mapping = domain.NewMappingTable(mappings)
	if next.lookups == nil {
		next.lookups = &domain.LookupRegistry{}
	}
	next.rules.ReplaceDefaults(defaultRules)
	next.rules.ReplaceUserDefined(userRules)
	next.versions = map[string]string{
		domain.KeyInputDataset:       inputV,
		domain.KeyOutputDataset:      outputV,
		domain.KeyMappings:           mappingsV,
		domain.KeyLookups:            lookupsV,
		domain.KeyDefaultFields:      fieldsV,
		domain.KeyDefaultFieldValues: fieldValuesV,
		domain.KeyUserRules:          userRulesV,
	}

	s.mu.Lock()
	s.st = next
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session loaded",
		"input_headers", len(next.input.Headers),
		"output_headers", len(next.output.Headers),
		"mappings", next.mapping.Len(),
		"lookups", next.lookups.Len())
	return nil
}

func wrapLoad(key string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	return nil
}

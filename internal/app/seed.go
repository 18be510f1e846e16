package app

import (
	"context"
	"fmt"
	"log/slog"

	"sheetmap/internal/api"
)

// seed writes first-start documents. Idempotent: existing documents are
// left alone.
func seed(ctx context.Context, svcs api.Services, logger *slog.Logger) error {
	seeded, err := svcs.Rules.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed default rules: %w", err)
	}
	if seeded {
		logger.Info("default rules seeded")
	}
	return nil
}

// Package di provides dependency injection wiring and initialization.
package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/posleasing/leasesync/internal/config"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
// 1. Open databases
// 2. Build data access, rendering, mail and the cycle services
func Wire(ctx context.Context, cfg *config.Config, version string, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := InitializeServices(ctx, container, version, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, nil
}

// Close releases the database connections
func (c *Container) Close() error {
	var errs []error
	if c.DataDB != nil {
		errs = append(errs, c.DataDB.Close())
	}
	if c.ControlDB != nil {
		errs = append(errs, c.ControlDB.Close())
	}
	return errors.Join(errs...)
}

package di

import (
	"fmt"

	"github.com/posleasing/leasesync/internal/config"
	"github.com/posleasing/leasesync/internal/database"
)

// InitializeDatabases opens the data and control connections
func InitializeDatabases(cfg *config.Config) (*Container, error) {
	container := &Container{Config: cfg}

	// Lease data: business process, records and report datasets
	dataDB, err := database.New(database.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DataDSN,
		Name:         "data",
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data database: %w", err)
	}
	container.DataDB = dataDB

	// Control: recipients, system parameters, sync bookkeeping
	controlDB, err := database.New(database.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.ControlDSN,
		Name:         "control",
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		dataDB.Close()
		return nil, fmt.Errorf("failed to initialize control database: %w", err)
	}
	container.ControlDB = controlDB

	return container, nil
}

// Package di provides dependency injection type definitions.
package di

import (
	"github.com/posleasing/leasesync/internal/archive"
	"github.com/posleasing/leasesync/internal/config"
	"github.com/posleasing/leasesync/internal/database"
	"github.com/posleasing/leasesync/internal/diagnostics"
	"github.com/posleasing/leasesync/internal/mail"
	"github.com/posleasing/leasesync/internal/notification"
	"github.com/posleasing/leasesync/internal/orchestrator"
	"github.com/posleasing/leasesync/internal/reporting"
	"github.com/posleasing/leasesync/internal/scheduler"
	"github.com/posleasing/leasesync/internal/server"
	"github.com/posleasing/leasesync/internal/store"
)

// Container holds all dependencies for the application. It is created by
// Wire and owns the database connections.
type Container struct {
	Config *config.Config

	// Databases
	DataDB    *database.DB
	ControlDB *database.DB

	// Data access
	Store    *store.Store
	Retrying *store.Retrying

	// Services
	Reporter     *reporting.Renderer
	Mail         *mail.Sender
	Notification *notification.Service
	Archive      *archive.Archiver // nil when archiving is disabled
	Diagnostics  *diagnostics.Reporter
	Orchestrator *orchestrator.Service
	Scheduler    *scheduler.Scheduler
	Server       *server.Server // nil when HTTP_PORT is 0
}

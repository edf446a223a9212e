package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/posleasing/leasesync/internal/archive"
	"github.com/posleasing/leasesync/internal/diagnostics"
	"github.com/posleasing/leasesync/internal/mail"
	"github.com/posleasing/leasesync/internal/notification"
	"github.com/posleasing/leasesync/internal/orchestrator"
	"github.com/posleasing/leasesync/internal/reporting"
	"github.com/posleasing/leasesync/internal/retry"
	"github.com/posleasing/leasesync/internal/scheduler"
	"github.com/posleasing/leasesync/internal/server"
	"github.com/posleasing/leasesync/internal/store"
)

// InitializeServices builds everything on top of the open databases
func InitializeServices(ctx context.Context, c *Container, version string, log zerolog.Logger) error {
	cfg := c.Config

	c.Store = store.New(store.Config{
		Data:           c.DataDB,
		Control:        c.ControlDB,
		CommandTimeout: cfg.Database.CommandTimeout,
		Log:            log,
	})
	c.Retrying = store.NewRetrying(c.Store, retry.DataAccess(log))

	c.Reporter = reporting.New(log)

	var dialer mail.Dialer
	if cfg.SMTP.Host != "" {
		dialer = mail.NewDialer(mail.Config{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, notifications will fail")
	}
	c.Mail = mail.NewSender(dialer, retry.Transport(log), log)
	c.Notification = notification.NewService(c.Mail, cfg.SMTP.From, cfg.SMTP.Subject, log)

	c.Diagnostics = diagnostics.NewReporter(cfg.App.User, cfg.App.SystemID, cfg.Sync.ReportMode, log)

	ocfg := orchestrator.Config{
		Settings:    cfg.Sync,
		SystemID:    cfg.App.SystemID,
		Phrase:      cfg.App.Phrase,
		Location:    cfg.Location,
		Data:        c.Retrying,
		LastSync:    c.Store,
		Reporter:    c.Reporter,
		Notifier:    c.Notification,
		Diagnostics: c.Diagnostics,
		Log:         log,
	}
	if cfg.Archive.Enabled {
		a, err := archive.New(ctx, archive.Config{
			Bucket:          cfg.Archive.Bucket,
			Endpoint:        cfg.Archive.Endpoint,
			Region:          cfg.Archive.Region,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
			Prefix:          cfg.Archive.Prefix,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize report archive: %w", err)
		}
		c.Archive = a
		ocfg.Archiver = a
	}
	c.Orchestrator = orchestrator.New(ocfg)

	c.Scheduler = scheduler.New(scheduler.Config{
		ExecutionTime: cfg.Sync.ExecutionTime,
		Runner:        c.Orchestrator,
		Log:           log,
	})

	if cfg.HTTPPort > 0 {
		c.Server = server.New(server.Config{
			Log:       log,
			Port:      cfg.HTTPPort,
			Scheduler: c.Scheduler,
			Databases: []server.Database{c.DataDB, c.ControlDB},
			System:    c.Diagnostics,
			Version:   version,
		})
	}

	return nil
}

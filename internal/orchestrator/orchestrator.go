// Package orchestrator runs the daily sync cycle and the monthly report dispatch.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/posleasing/leasesync/internal/domain"
	"github.com/posleasing/leasesync/internal/logo"
	"github.com/posleasing/leasesync/internal/policy"
)

const (
	cycleFunction = "RunCycle"

	defaultErrorNotifyTimeout = 2 * time.Minute
)

// Config holds the orchestrator collaborators
type Config struct {
	Settings    domain.SyncSettings
	SystemID    int
	Phrase      string
	Location    *time.Location // Business calendar; defaults to UTC
	Data        DataAccess
	LastSync    LastSyncReader // Optional, single attempt
	Reporter    Reporter
	Notifier    Notifier
	Archiver    Archiver // Optional
	Diagnostics FailureReporter
	Log         zerolog.Logger

	ErrorNotifyTimeout time.Duration
	Now                func() time.Time
}

// Service runs sync cycles. It holds no state between cycles.
type Service struct {
	settings      domain.SyncSettings
	systemID      int
	phrase        string
	loc           *time.Location
	data          DataAccess
	lastSync      LastSyncReader
	reporter      Reporter
	notifier      Notifier
	archiver      Archiver
	diag          FailureReporter
	log           zerolog.Logger
	notifyTimeout time.Duration
	now           func() time.Time
}

// New creates an orchestrator
func New(cfg Config) *Service {
	s := &Service{
		settings:      cfg.Settings,
		systemID:      cfg.SystemID,
		phrase:        cfg.Phrase,
		loc:           cfg.Location,
		data:          cfg.Data,
		lastSync:      cfg.LastSync,
		reporter:      cfg.Reporter,
		notifier:      cfg.Notifier,
		archiver:      cfg.Archiver,
		diag:          cfg.Diagnostics,
		log:           cfg.Log.With().Str("component", "orchestrator").Logger(),
		notifyTimeout: cfg.ErrorNotifyTimeout,
		now:           cfg.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = defaultErrorNotifyTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// cycle carries the working state of one RunCycle call
type cycle struct {
	result *domain.CycleResult
	log    zerolog.Logger
	now    time.Time
	today  time.Time
	done   bool

	records     []domain.LeaseRecord
	delinquency []domain.DelinquencyRecord
	inactive    []domain.InactiveRecord
	logo        []byte
	bundle      domain.ReportBundle
}

type stage struct {
	name string
	run  func(ctx context.Context, c *cycle) error
}

// panicError carries a recovered panic out of a stage
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }

func (s *Service) stages() []stage {
	return []stage{
		{"last_sync_date", s.readLastSyncDate},
		{"business_process", s.executeBusinessProcess},
		{"list_records", s.listRecords},
		{"sync_records", s.syncRecords},
		{"disable", s.executeDisable},
		{"report_day", s.checkReportDay},
		{"alert_load", s.executeAlertLoad},
		{"report_data", s.loadReportData},
		{"decide", s.decide},
		{"render", s.render},
		{"archive", s.archive},
		{"dispatch", s.dispatch},
	}
}

// RunCycle executes one full cycle. Failures are converted into an error
// notification and reported in the result; the returned error is non-nil
// only when ctx was cancelled.
func (s *Service) RunCycle(ctx context.Context) (*domain.CycleResult, error) {
	now := s.now().In(s.loc)
	y, m, d := now.Date()
	c := &cycle{
		result: domain.NewCycleResult(now),
		now:    now,
		today:  time.Date(y, m, d, 0, 0, 0, 0, s.loc),
	}
	c.log = s.log.With().Str("cycle_id", c.result.ID.String()).Logger()
	c.log.Info().Time("today", c.today).Str("report_mode", string(s.settings.ReportMode)).Msg("Cycle started")

	for _, st := range s.stages() {
		if c.done {
			break
		}
		if err := ctx.Err(); err != nil {
			return s.cancelled(c, st.name, err)
		}

		err := runStage(ctx, st, c)
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.cancelled(c, st.name, ctxErr)
		}
		s.fail(ctx, c, st.name, err)
		break
	}

	c.result.Finish(s.now())
	ev := c.log.Info()
	if c.result.Status != domain.CycleSuccess {
		ev = c.log.Warn()
	}
	ev.Str("status", string(c.result.Status)).
		Int("enumerated", c.result.Enumerated).
		Int("synced", c.result.Synced).
		Int("failed", c.result.Failed).
		Bool("report_day", c.result.ReportDay).
		Bool("reported", c.result.Reported).
		Dur("duration", c.result.Duration()).
		Msg("Cycle finished")
	return c.result, nil
}

func runStage(ctx context.Context, st stage, c *cycle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()
	return st.run(ctx, c)
}

func (s *Service) cancelled(c *cycle, stageName string, err error) (*domain.CycleResult, error) {
	c.result.Status = domain.CycleCancelled
	c.result.Stage = stageName
	c.result.Err = err.Error()
	c.result.Finish(s.now())
	c.log.Warn().Str("stage", stageName).Msg("Cycle cancelled")
	return c.result, err
}

// fail is the single conversion point from a cycle failure to an error
// notification. It never returns an error.
func (s *Service) fail(ctx context.Context, c *cycle, stageName string, cause error) {
	c.result.Status = domain.CycleFailed
	c.result.Stage = stageName
	c.result.Err = cause.Error()

	trace := errorTrace(stageName, cause)
	var pe *panicError
	if errors.As(cause, &pe) {
		trace = append(trace, pe.stack...)
	}
	c.log.Error().Err(cause).Str("stage", stageName).Msg("Cycle failed, sending error notification")

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		info := s.diag.Build(cause, cycleFunction, stageName, trace, s.now())
		recipients, err := s.data.GetEmailRecipients(nctx, s.systemID, domain.AudienceError)
		if err != nil {
			return fmt.Errorf("failed to read error recipients: %w", err)
		}
		return s.notifier.Send(nctx, domain.NotificationRequest{
			Recipients: recipients,
			Kind:       domain.NotificationError,
			Error:      &info,
		})
	}()
	if err != nil {
		c.log.WithLevel(zerolog.FatalLevel).
			Err(err).
			AnErr("cycle_error", cause).
			Str("stage", stageName).
			Msg("Error notification failed")
	}
}

// errorTrace lists the failing stage and every wrapped error in the chain.
func errorTrace(stageName string, err error) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "stage: %s\n", stageName)
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "  %T: %v\n", e, e)
	}
	return []byte(b.String())
}

func (s *Service) readLastSyncDate(ctx context.Context, c *cycle) error {
	if s.lastSync == nil {
		return nil
	}
	last, err := s.lastSync.GetLastSyncDate(ctx)
	switch {
	case err != nil:
		c.log.Warn().Err(err).Msg("Could not read last sync date")
	case last == nil:
		c.log.Info().Msg("No previous sync recorded")
	default:
		c.log.Info().Time("last_sync", *last).Msg("Last sync date")
	}
	return nil
}

func (s *Service) executeBusinessProcess(ctx context.Context, c *cycle) error {
	msg, err := s.data.ExecuteBusinessProcess(ctx, c.now)
	if err != nil {
		return err
	}
	c.log.Info().Str("result", msg).Msg("Business process executed")
	return nil
}

func (s *Service) listRecords(ctx context.Context, c *cycle) error {
	records, err := s.data.ListRecords(ctx, c.now)
	if err != nil {
		return err
	}
	c.records = records
	c.result.Enumerated = len(records)
	if len(records) == 0 {
		c.log.Info().Msg("No lease records to synchronize")
	}
	return nil
}

// syncRecords attempts every record once, in order. A failing record is
// counted and skipped.
func (s *Service) syncRecords(ctx context.Context, c *cycle) error {
	for i, rec := range c.records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.syncOne(ctx, rec); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.result.Failed++
			c.log.Error().Err(err).
				Int("index", i).
				Str("retailer", rec.Retailer).
				Str("parent", rec.ParentRetailer).
				Msg("Record sync failed, continuing")
			continue
		}
		c.result.Synced++
	}

	c.log.Info().
		Int("synced", c.result.Synced).
		Int("failed", c.result.Failed).
		Int("total", c.result.Enumerated).
		Msg("Record sync finished")
	return nil
}

func (s *Service) syncOne(ctx context.Context, rec domain.LeaseRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.data.SyncRecord(ctx, rec)
}

func (s *Service) executeDisable(ctx context.Context, c *cycle) error {
	if err := s.data.ExecuteDisableStep(ctx); err != nil {
		return err
	}
	c.log.Info().Msg("Disable step executed")
	return nil
}

func (s *Service) checkReportDay(_ context.Context, c *cycle) error {
	due := false
	if s.settings.SkipReportDateValidation {
		c.log.Info().Msg("Report date validation skipped by configuration")
		due = true
	} else {
		ok, err := policy.IsReportDay(c.today, s.settings.AdvanceDays)
		if err != nil {
			c.log.Error().Err(err).Int("advance_days", s.settings.AdvanceDays).Msg("Could not compute report day, skipping reports")
		}
		due = ok
	}

	c.result.ReportDay = due
	if !due {
		c.log.Info().Msg("Not a report day")
		c.done = true
	}
	return nil
}

func (s *Service) executeAlertLoad(ctx context.Context, c *cycle) error {
	if !s.settings.AlertLoadEnabled {
		return nil
	}
	if err := s.data.ExecuteAlertLoad(ctx); err != nil {
		return err
	}
	c.log.Info().Msg("Alert load executed")
	return nil
}

func (s *Service) loadReportData(ctx context.Context, c *cycle) error {
	var err error
	if c.delinquency, err = s.data.GetDelinquencyReportData(ctx, c.today); err != nil {
		return err
	}
	if c.inactive, err = s.data.GetInactiveReportData(ctx); err != nil {
		return err
	}
	c.logo = s.loadLogo(ctx, c)

	c.log.Info().
		Int("delinquency", len(c.delinquency)).
		Int("inactive", len(c.inactive)).
		Bool("logo", len(c.logo) > 0).
		Msg("Report data loaded")
	return nil
}

// loadLogo never fails the cycle; any problem only drops the logo.
func (s *Service) loadLogo(ctx context.Context, c *cycle) (img []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn().Interface("panic", r).Msg("Logo decoding panicked, continuing without logo")
			img = nil
		}
	}()

	params, err := s.data.GetSystemParameters(ctx, s.systemID, s.phrase)
	if err != nil {
		c.log.Warn().Err(err).Msg("Could not read system parameters, continuing without logo")
		return nil
	}
	return logo.FromParameters(params, c.log)
}

func (s *Service) decide(_ context.Context, c *cycle) error {
	d := policy.Decide(s.settings.ReportMode, len(c.delinquency) > 0, len(c.inactive) > 0)
	c.result.Decision = d

	if !d.Dispatch {
		c.log.Info().
			Str("report_mode", string(s.settings.ReportMode)).
			Bool("has_delinquency", len(c.delinquency) > 0).
			Bool("has_inactive", len(c.inactive) > 0).
			Msg("Report dispatch not required by report mode")
		c.done = true
	}
	return nil
}

func (s *Service) render(_ context.Context, c *cycle) error {
	if c.result.Decision.RenderDelinquency {
		pdf, err := s.reporter.RenderDelinquencyPDF(c.delinquency, c.logo)
		if err != nil {
			return err
		}
		xlsx, err := s.reporter.RenderDelinquencySpreadsheet(c.delinquency)
		if err != nil {
			return err
		}
		c.bundle = append(c.bundle,
			domain.Attachment{Filename: "ReporteMorosidad.pdf", ContentType: domain.ContentTypePDF, Content: pdf},
			domain.Attachment{Filename: "ReporteMorosidad.xlsx", ContentType: domain.ContentTypeXLSX, Content: xlsx},
		)
	}

	inactive, err := s.reporter.RenderInactiveSpreadsheet(c.inactive)
	if err != nil {
		return err
	}
	c.bundle = append(c.bundle, domain.Attachment{Filename: "ReporteInactivos.xlsx", ContentType: domain.ContentTypeXLSX, Content: inactive})
	c.result.Attachments = len(c.bundle)
	return nil
}

func (s *Service) archive(ctx context.Context, c *cycle) error {
	if s.archiver == nil {
		return nil
	}
	if err := s.archiver.Archive(ctx, c.result.ID, c.bundle); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("Report archive failed, continuing with dispatch")
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, c *cycle) error {
	recipients, err := s.data.GetEmailRecipients(ctx, s.systemID, domain.AudienceStandard)
	if err != nil {
		return err
	}

	kind := domain.NotificationSuccess
	if c.result.Decision.NoDelinquencyNotice {
		kind = domain.NotificationSuccessNoDelinquency
	}
	if err := s.notifier.Send(ctx, domain.NotificationRequest{
		Recipients:  recipients,
		Attachments: c.bundle,
		Kind:        kind,
	}); err != nil {
		return err
	}

	c.result.Reported = true
	c.log.Info().Str("kind", string(kind)).Int("attachments", len(c.bundle)).Msg("Reports dispatched")
	return nil
}

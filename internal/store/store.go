// Package store implements data access over the lease data and control databases.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/posleasing/leasesync/internal/database"
	"github.com/posleasing/leasesync/internal/domain"
	"github.com/posleasing/leasesync/internal/policy"
)

const (
	// SyncProcessCode identifies this process in the sync control table
	SyncProcessCode = "ARRENDA_POS_SYNC"
	// SyncUser is recorded as the author of synchronized records
	SyncUser = "ServicioSinc"

	delinquencyAlertType = 2
	inactiveStatus       = 0
	defaultBusinessMsg   = "Sp_DbDatos_Arrendamiento_Pos_Business ejecutado sin mensaje."
)

// ErrInvalidParameter is returned for rejected parameter updates
var ErrInvalidParameter = errors.New("invalid system parameter")

// Store runs the lease procedures against the data and control databases
type Store struct {
	data    *sql.DB
	control *sql.DB
	stmts   Statements
	timeout time.Duration
	log     zerolog.Logger
}

// Config holds store dependencies
type Config struct {
	Data           *database.DB
	Control        *database.DB
	Statements     *Statements // nil uses DefaultStatements
	CommandTimeout time.Duration
	Log            zerolog.Logger
}

// New creates a store
func New(cfg Config) *Store {
	stmts := DefaultStatements()
	if cfg.Statements != nil {
		stmts = *cfg.Statements
	}
	timeout := cfg.CommandTimeout
	if timeout <= 0 {
		timeout = 240 * time.Second
	}
	return &Store{
		data:    cfg.Data.Conn(),
		control: cfg.Control.Conn(),
		stmts:   stmts,
		timeout: timeout,
		log:     cfg.Log.With().Str("component", "store").Logger(),
	}
}

func (s *Store) query(ctx context.Context, db *sql.DB, stmt string, args ...any) ([]row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

func (s *Store) exec(ctx context.Context, db *sql.DB, stmt string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := db.ExecContext(ctx, stmt, args...)
	return err
}

func (s *Store) scalar(ctx context.Context, db *sql.DB, stmt string, args ...any) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var v any
	err := db.QueryRowContext(ctx, stmt, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// GetLastSyncDate returns the last recorded sync, or nil when none exists.
func (s *Store) GetLastSyncDate(ctx context.Context) (*time.Time, error) {
	v, err := s.scalar(ctx, s.control, s.stmts.LastSyncDate, sql.Named("processCode", SyncProcessCode))
	if err != nil {
		return nil, fmt.Errorf("failed to read last sync date: %w", err)
	}
	t, ok := asTime(v)
	if !ok {
		s.log.Warn().Msg("No last sync date recorded")
		return nil, nil
	}
	return &t, nil
}

// ExecuteBusinessProcess runs the daily business procedure and returns its message.
func (s *Store) ExecuteBusinessProcess(ctx context.Context, date time.Time) (string, error) {
	v, err := s.scalar(ctx, s.data, s.stmts.BusinessProcess, sql.Named("Fecha", date))
	if err != nil {
		return "", fmt.Errorf("failed to execute business process: %w", err)
	}
	if msg := asString(v); msg != "" {
		return msg, nil
	}
	return defaultBusinessMsg, nil
}

// ListRecords enumerates the lease records to synchronize for date.
func (s *Store) ListRecords(ctx context.Context, date time.Time) ([]domain.LeaseRecord, error) {
	rows, err := s.query(ctx, s.data, s.stmts.ListRecords, sql.Named("Fecha", date))
	if err != nil {
		return nil, fmt.Errorf("failed to list lease records: %w", err)
	}

	records := make([]domain.LeaseRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, domain.LeaseRecord{
			Retailer:       r.str("Retailer"),
			ParentRetailer: r.str("Padre"),
			Consolidate:    r.boolean("Consolidar"),
			Amount:         r.money("Monto"),
			DeviceCount:    r.integer("Cantidad"),
		})
	}
	return records, nil
}

// SyncRecord synchronizes a single lease record.
func (s *Store) SyncRecord(ctx context.Context, rec domain.LeaseRecord) error {
	err := s.exec(ctx, s.data, s.stmts.SyncRecord,
		sql.Named("Retailer", rec.Retailer),
		sql.Named("RtlPadre", rec.ParentRetailer),
		sql.Named("Consolidar", rec.Consolidate),
		sql.Named("Arrendamiento", rec.Amount.String()),
		sql.Named("NoPos", rec.DeviceCount),
		sql.Named("User", SyncUser),
	)
	if err != nil {
		return fmt.Errorf("failed to sync retailer %s: %w", rec.Retailer, err)
	}
	return nil
}

// ExecuteDisableStep disables leases that are no longer active.
func (s *Store) ExecuteDisableStep(ctx context.Context) error {
	if err := s.exec(ctx, s.data, s.stmts.Disable); err != nil {
		return fmt.Errorf("failed to execute disable step: %w", err)
	}
	return nil
}

// ExecuteAlertLoad refreshes the delinquency alert table.
func (s *Store) ExecuteAlertLoad(ctx context.Context) error {
	if err := s.exec(ctx, s.data, s.stmts.AlertLoad); err != nil {
		return fmt.Errorf("failed to execute alert load: %w", err)
	}
	return nil
}

// GetEmailRecipients returns the configured addresses for an audience.
func (s *Store) GetEmailRecipients(ctx context.Context, systemID int, audience domain.AudienceType) ([]string, error) {
	rows, err := s.query(ctx, s.control, s.stmts.Recipients,
		sql.Named("IdSistema", systemID),
		sql.Named("IdTipo", int(audience)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s recipients: %w", audience, err)
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.str("Email"))
	}
	return domain.NormalizeRecipients(out), nil
}

// GetDelinquencyReportData reads last month's delinquency alerts.
func (s *Store) GetDelinquencyReportData(ctx context.Context, today time.Time) ([]domain.DelinquencyRecord, error) {
	from, to := policy.PreviousMonthRange(today)
	rows, err := s.query(ctx, s.data, s.stmts.DelinquencyData,
		sql.Named("Tipo", delinquencyAlertType),
		sql.Named("Desde", from),
		sql.Named("Hasta", to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read delinquency data: %w", err)
	}

	records := make([]domain.DelinquencyRecord, 0, len(rows))
	for i, r := range rows {
		month := r.str("mes")
		if t, ok := r.raw("mes").(time.Time); ok {
			month = t.Format("01/2006")
		}
		records = append(records, domain.DelinquencyRecord{
			No:               i + 1,
			Bank:             r.str("banco"),
			Retailer:         r.str("retailer"),
			Name:             r.str("nombre"),
			Amount:           r.money("monto"),
			Balance:          r.money("saldo"),
			Pending:          r.integer("debe"),
			Start:            r.date("inicio"),
			Month:            month,
			Devices:          r.integer("pos"),
			Status:           r.str("estado"),
			Credits:          r.money("abonos"),
			ChargebackDebits: r.money("debito_c"),
			LeaseDebits:      r.money("debito_a"),
			MaxPayment:       r.money("maximo"),
		})
	}
	return records, nil
}

// GetInactiveReportData reads merchants whose leases were disconnected.
func (s *Store) GetInactiveReportData(ctx context.Context) ([]domain.InactiveRecord, error) {
	rows, err := s.query(ctx, s.data, s.stmts.InactiveData, sql.Named("Estado", inactiveStatus))
	if err != nil {
		return nil, fmt.Errorf("failed to read inactive data: %w", err)
	}

	records := make([]domain.InactiveRecord, 0, len(rows))
	for i, r := range rows {
		records = append(records, domain.InactiveRecord{
			No:         i + 1,
			Bank:       r.str("banco"),
			Retailer:   r.str("retailer"),
			Name:       r.str("nombre"),
			Amount:     r.money("monto"),
			Balance:    r.money("saldo"),
			Pending:    r.integer("debe"),
			Start:      r.date("inicio"),
			Withdrawal: r.date("retiro"),
			Devices:    r.integer("pos"),
			Status:     r.str("estado"),
		})
	}
	return records, nil
}

// GetSystemParameters reads the parameters of a system, decrypted with phrase.
func (s *Store) GetSystemParameters(ctx context.Context, systemID int, phrase string) ([]domain.SystemParameter, error) {
	rows, err := s.query(ctx, s.control, s.stmts.ParametersGet,
		sql.Named("idSistema", systemID),
		sql.Named("Phrase", phrase),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read system parameters: %w", err)
	}

	params := make([]domain.SystemParameter, 0, len(rows))
	for _, r := range rows {
		params = append(params, domain.SystemParameter{
			Code:      r.str("Codigo"),
			Value:     r.str("Valor"),
			Decrypted: r.str("Desencriptado"),
			Payload:   domain.ClassifyPayload(r.raw("Byte")),
		})
	}
	return params, nil
}

// UpdateSystemParameter stores a parameter value, optionally encrypted.
func (s *Store) UpdateSystemParameter(ctx context.Context, code, value string, encrypt bool, systemID int, phrase string) error {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(value) == "" || systemID <= 0 {
		return fmt.Errorf("%w: code=%q system=%d", ErrInvalidParameter, code, systemID)
	}

	err := s.exec(ctx, s.control, s.stmts.ParametersUpdate,
		sql.Named("Codigo", code),
		sql.Named("Descripcion", value),
		sql.Named("IsEncryption", encrypt),
		sql.Named("IdSistema", systemID),
		sql.Named("Phrase", phrase),
	)
	if err != nil {
		return fmt.Errorf("failed to update parameter %s: %w", code, err)
	}

	s.log.Info().Str("code", code).Msg("System parameter updated")
	return nil
}

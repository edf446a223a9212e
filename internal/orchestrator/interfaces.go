package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/posleasing/leasesync/internal/domain"
)

// DataAccess is the data store collaborator. Implementations are expected to
// apply their own retry policy.
type DataAccess interface {
	ExecuteBusinessProcess(ctx context.Context, date time.Time) (string, error)
	ListRecords(ctx context.Context, date time.Time) ([]domain.LeaseRecord, error)
	SyncRecord(ctx context.Context, record domain.LeaseRecord) error
	ExecuteDisableStep(ctx context.Context) error
	ExecuteAlertLoad(ctx context.Context) error
	GetEmailRecipients(ctx context.Context, systemID int, audience domain.AudienceType) ([]string, error)
	GetDelinquencyReportData(ctx context.Context, today time.Time) ([]domain.DelinquencyRecord, error)
	GetInactiveReportData(ctx context.Context) ([]domain.InactiveRecord, error)
	GetSystemParameters(ctx context.Context, systemID int, phrase string) ([]domain.SystemParameter, error)
}

// LastSyncReader reads the sync bookkeeping. It is called once per cycle
// and its failures are only logged.
type LastSyncReader interface {
	GetLastSyncDate(ctx context.Context) (*time.Time, error)
}

// Reporter renders report files
type Reporter interface {
	RenderDelinquencyPDF(records []domain.DelinquencyRecord, logo []byte) ([]byte, error)
	RenderDelinquencySpreadsheet(records []domain.DelinquencyRecord) ([]byte, error)
	RenderInactiveSpreadsheet(records []domain.InactiveRecord) ([]byte, error)
}

// Notifier delivers notifications
type Notifier interface {
	Send(ctx context.Context, req domain.NotificationRequest) error
}

// Archiver keeps a copy of dispatched report bundles
type Archiver interface {
	Archive(ctx context.Context, cycleID uuid.UUID, bundle domain.ReportBundle) error
}

// FailureReporter describes a cycle failure for the error notification
type FailureReporter interface {
	Build(err error, function, stage string, trace []byte, now time.Time) domain.ExceptionInfo
}

package testing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/posleasing/leasesync/internal/domain"
)

// MockDataAccess is a testify mock of the data access collaborator
type MockDataAccess struct {
	mock.Mock
}

func (m *MockDataAccess) GetLastSyncDate(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockDataAccess) ExecuteBusinessProcess(ctx context.Context, date time.Time) (string, error) {
	args := m.Called(ctx, date)
	return args.String(0), args.Error(1)
}

func (m *MockDataAccess) ListRecords(ctx context.Context, date time.Time) ([]domain.LeaseRecord, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LeaseRecord), args.Error(1)
}

func (m *MockDataAccess) SyncRecord(ctx context.Context, record domain.LeaseRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDataAccess) ExecuteDisableStep(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDataAccess) ExecuteAlertLoad(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDataAccess) GetEmailRecipients(ctx context.Context, systemID int, audience domain.AudienceType) ([]string, error) {
	args := m.Called(ctx, systemID, audience)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDataAccess) GetDelinquencyReportData(ctx context.Context, today time.Time) ([]domain.DelinquencyRecord, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DelinquencyRecord), args.Error(1)
}

func (m *MockDataAccess) GetInactiveReportData(ctx context.Context) ([]domain.InactiveRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InactiveRecord), args.Error(1)
}

func (m *MockDataAccess) GetSystemParameters(ctx context.Context, systemID int, phrase string) ([]domain.SystemParameter, error) {
	args := m.Called(ctx, systemID, phrase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SystemParameter), args.Error(1)
}

// MockReporter is a testify mock of the report renderer
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) RenderDelinquencyPDF(records []domain.DelinquencyRecord, logo []byte) ([]byte, error) {
	args := m.Called(records, logo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockReporter) RenderDelinquencySpreadsheet(records []domain.DelinquencyRecord) ([]byte, error) {
	args := m.Called(records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockReporter) RenderInactiveSpreadsheet(records []domain.InactiveRecord) ([]byte, error) {
	args := m.Called(records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockNotifier is a testify mock of the notification sender
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, req domain.NotificationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockArchiver is a testify mock of the report archive
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, cycleID uuid.UUID, bundle domain.ReportBundle) error {
	args := m.Called(ctx, cycleID, bundle)
	return args.Error(0)
}

package store

import (
	"context"
	"time"

	"github.com/posleasing/leasesync/internal/domain"
	"github.com/posleasing/leasesync/internal/retry"
)

// Retrying decorates a Store so that every call goes through the data
// access retry policy.
type Retrying struct {
	inner  *Store
	policy retry.Policy
}

// NewRetrying wraps s with p.
func NewRetrying(s *Store, p retry.Policy) *Retrying {
	return &Retrying{inner: s, policy: p}
}

func (r *Retrying) ExecuteBusinessProcess(ctx context.Context, date time.Time) (string, error) {
	return retry.Do(ctx, r.policy.Named("ExecuteBusinessProcess"), func(ctx context.Context) (string, error) {
		return r.inner.ExecuteBusinessProcess(ctx, date)
	})
}

func (r *Retrying) ListRecords(ctx context.Context, date time.Time) ([]domain.LeaseRecord, error) {
	return retry.Do(ctx, r.policy.Named("ListRecords"), func(ctx context.Context) ([]domain.LeaseRecord, error) {
		return r.inner.ListRecords(ctx, date)
	})
}

func (r *Retrying) SyncRecord(ctx context.Context, rec domain.LeaseRecord) error {
	return r.policy.Named("SyncRecord").Run(ctx, func(ctx context.Context) error {
		return r.inner.SyncRecord(ctx, rec)
	})
}

func (r *Retrying) ExecuteDisableStep(ctx context.Context) error {
	return r.policy.Named("ExecuteDisableStep").Run(ctx, r.inner.ExecuteDisableStep)
}

func (r *Retrying) ExecuteAlertLoad(ctx context.Context) error {
	return r.policy.Named("ExecuteAlertLoad").Run(ctx, r.inner.ExecuteAlertLoad)
}

func (r *Retrying) GetEmailRecipients(ctx context.Context, systemID int, audience domain.AudienceType) ([]string, error) {
	return retry.Do(ctx, r.policy.Named("GetEmailRecipients"), func(ctx context.Context) ([]string, error) {
		return r.inner.GetEmailRecipients(ctx, systemID, audience)
	})
}

func (r *Retrying) GetDelinquencyReportData(ctx context.Context, today time.Time) ([]domain.DelinquencyRecord, error) {
	return retry.Do(ctx, r.policy.Named("GetDelinquencyReportData"), func(ctx context.Context) ([]domain.DelinquencyRecord, error) {
		return r.inner.GetDelinquencyReportData(ctx, today)
	})
}

func (r *Retrying) GetInactiveReportData(ctx context.Context) ([]domain.InactiveRecord, error) {
	return retry.Do(ctx, r.policy.Named("GetInactiveReportData"), r.inner.GetInactiveReportData)
}

func (r *Retrying) GetSystemParameters(ctx context.Context, systemID int, phrase string) ([]domain.SystemParameter, error) {
	return retry.Do(ctx, r.policy.Named("GetSystemParameters"), func(ctx context.Context) ([]domain.SystemParameter, error) {
		return r.inner.GetSystemParameters(ctx, systemID, phrase)
	})
}

func (r *Retrying) UpdateSystemParameter(ctx context.Context, code, value string, encrypt bool, systemID int, phrase string) error {
	return r.policy.Named("UpdateSystemParameter").Run(ctx, func(ctx context.Context) error {
		return r.inner.UpdateSystemParameter(ctx, code, value, encrypt, systemID, phrase)
	})
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// CycleStatus is the overall outcome of one cycle
type CycleStatus string

const (
	CycleSuccess   CycleStatus = "success"
	CyclePartial   CycleStatus = "partial"
	CycleFailed    CycleStatus = "failed"
	CycleCancelled CycleStatus = "cancelled"
)

// ReportDecision is the outcome of the reporting-mode policy
type ReportDecision struct {
	Dispatch            bool `json:"dispatch"`
	RenderDelinquency   bool `json:"render_delinquency"`
	NoDelinquencyNotice bool `json:"no_delinquency_notice"`
}

// CycleResult summarizes one cycle. It is informational only.
type CycleResult struct {
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	ID          uuid.UUID      `json:"id"`
	Status      CycleStatus    `json:"status"`
	Stage       string         `json:"stage,omitempty"`
	Err         string         `json:"error,omitempty"`
	Decision    ReportDecision `json:"decision"`
	Enumerated  int            `json:"enumerated"`
	Synced      int            `json:"synced"`
	Failed      int            `json:"failed"`
	ReportDay   bool           `json:"report_day"`
	Reported    bool           `json:"reported"`
	Attachments int            `json:"attachments"`
}

// NewCycleResult starts a result with a fresh id.
func NewCycleResult(now time.Time) *CycleResult {
	return &CycleResult{ID: uuid.New(), StartedAt: now, Status: CycleSuccess}
}

// Finish stamps the end time and derives the partial status from sync counts.
func (r *CycleResult) Finish(now time.Time) {
	r.FinishedAt = now
	if r.Status == CycleSuccess && r.Failed > 0 {
		r.Status = CyclePartial
	}
}

// Duration returns the elapsed cycle time.
func (r *CycleResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

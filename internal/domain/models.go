// Package domain provides the core models shared by the sync and reporting workflow.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReportMode controls when the delinquency report is rendered and dispatched
type ReportMode string

const (
	ReportModeStrict   ReportMode = "Strict"
	ReportModeFlexible ReportMode = "Flexible"
	ReportModeForce    ReportMode = "Force"
	ReportModeNone     ReportMode = "None"
)

// ParseReportMode matches a configured mode case-insensitively.
func ParseReportMode(s string) (ReportMode, error) {
	for _, m := range []ReportMode{ReportModeStrict, ReportModeFlexible, ReportModeForce, ReportModeNone} {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown report mode %q", s)
}

// SyncSettings is the read-only schedule and reporting configuration
type SyncSettings struct {
	ExecutionTime            string // HH:mm or HH:mm:ss
	AdvanceDays              int
	SkipReportDateValidation bool
	ReportMode               ReportMode
	AlertLoadEnabled         bool
}

// LeaseRecord is one leasing unit to synchronize
type LeaseRecord struct {
	Retailer       string          `json:"retailer"`
	ParentRetailer string          `json:"parent_retailer"`
	Consolidate    bool            `json:"consolidate"`
	Amount         decimal.Decimal `json:"amount"`
	DeviceCount    int             `json:"device_count"`
}

// DelinquencyRecord is a row of the monthly delinquency report
type DelinquencyRecord struct {
	Start            time.Time       `json:"start"`
	Bank             string          `json:"bank"`
	Retailer         string          `json:"retailer"`
	Name             string          `json:"name"`
	Month            string          `json:"month"` // MM/yyyy
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	Balance          decimal.Decimal `json:"balance"`
	Credits          decimal.Decimal `json:"credits"`
	ChargebackDebits decimal.Decimal `json:"chargeback_debits"`
	LeaseDebits      decimal.Decimal `json:"lease_debits"`
	MaxPayment       decimal.Decimal `json:"max_payment"`
	No               int             `json:"no"`
	Pending          int             `json:"pending"`
	Devices          int             `json:"devices"`
}

// DelinquencyBand groups rows by pending months: 1, 2, or 3 for anything else.
func (r DelinquencyRecord) DelinquencyBand() int {
	switch r.Pending {
	case 1:
		return 1
	case 2:
		return 2
	default:
		return 3
	}
}

// InactiveRecord is a row of the inactive merchants report
type InactiveRecord struct {
	Start      time.Time       `json:"start"`
	Withdrawal time.Time       `json:"withdrawal"`
	Bank       string          `json:"bank"`
	Retailer   string          `json:"retailer"`
	Name       string          `json:"name"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	No         int             `json:"no"`
	Pending    int             `json:"pending"`
	Devices    int             `json:"devices"`
}

// SystemParameter is one entry of the per-system parameter table
type SystemParameter struct {
	Code      string
	Value     string
	Decrypted string
	Payload   BinaryPayload
}

// FindParameter returns the parameter whose code matches case-insensitively.
func FindParameter(params []SystemParameter, code string) (SystemParameter, bool) {
	for _, p := range params {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return SystemParameter{}, false
}

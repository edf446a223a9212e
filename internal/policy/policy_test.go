package policy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posleasing/leasesync/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsReportDay(t *testing.T) {
	tests := []struct {
		name    string
		today   time.Time
		advance int
		want    bool
	}{
		{"last day of january", date(2024, 1, 31), 0, true},
		{"day before end", date(2024, 1, 30), 0, false},
		{"leap february", date(2024, 2, 29), 0, true},
		{"non-leap february", date(2023, 2, 28), 0, true},
		{"advance two in april", date(2024, 4, 28), 2, true},
		{"advance two, end of april", date(2024, 4, 30), 2, false},
		{"advance spills into previous month", date(2024, 2, 29), 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsReportDay(tt.today, tt.advance)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsReportDay_IgnoresClock(t *testing.T) {
	got, err := IsReportDay(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC), 0)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestIsReportDay_ExactlyOneDayPerMonth(t *testing.T) {
	for advance := 0; advance <= 27; advance++ {
		for m := time.January; m <= time.December; m++ {
			hits := 0
			for d := date(2023, m, 1); d.Month() == m; d = d.AddDate(0, 0, 1) {
				ok, err := IsReportDay(d, advance)
				require.NoError(t, err)
				if ok {
					hits++
					last := date(2023, m+1, 0)
					assert.Equal(t, last.Day()-advance, d.Day())
				}
			}
			assert.Equal(t, 1, hits, "advance=%d month=%s", advance, m)
		}
	}
}

func TestIsReportDay_MisconfiguredOffsetDegrades(t *testing.T) {
	for _, advance := range []int{-1, MaxAdvanceDays + 1, math.MaxInt, math.MinInt} {
		assert.NotPanics(t, func() {
			got, err := IsReportDay(date(2024, 1, 31), advance)
			assert.Error(t, err)
			assert.False(t, got)
		})
	}
}

func TestIsReportDay_UnderflowsCalendar(t *testing.T) {
	got, err := IsReportDay(date(1, 1, 5), 40)
	assert.Error(t, err)
	assert.False(t, got)
}

func TestPreviousMonthRange(t *testing.T) {
	first, last := PreviousMonthRange(date(2024, 3, 15))
	assert.Equal(t, date(2024, 2, 1), first)
	assert.Equal(t, date(2024, 2, 29), last)

	first, last = PreviousMonthRange(date(2024, 1, 31))
	assert.Equal(t, date(2023, 12, 1), first)
	assert.Equal(t, date(2023, 12, 31), last)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		mode           domain.ReportMode
		hasDelinquency bool
		hasInactive    bool
		want           domain.ReportDecision
	}{
		{domain.ReportModeForce, true, true, domain.ReportDecision{Dispatch: true, RenderDelinquency: true}},
		{domain.ReportModeForce, false, false, domain.ReportDecision{Dispatch: true, RenderDelinquency: true}},
		{domain.ReportModeFlexible, true, false, domain.ReportDecision{Dispatch: true, RenderDelinquency: true}},
		{domain.ReportModeFlexible, false, true, domain.ReportDecision{Dispatch: true, NoDelinquencyNotice: true}},
		{domain.ReportModeNone, true, true, domain.ReportDecision{}},
		{domain.ReportModeNone, false, false, domain.ReportDecision{}},
		{domain.ReportModeStrict, true, true, domain.ReportDecision{Dispatch: true, RenderDelinquency: true}},
		{domain.ReportModeStrict, true, false, domain.ReportDecision{}},
		{domain.ReportModeStrict, false, true, domain.ReportDecision{}},
		{"", true, true, domain.ReportDecision{}},
	}
	for _, tt := range tests {
		name := string(tt.mode)
		if tt.hasDelinquency {
			name += "/delinquency"
		}
		if tt.hasInactive {
			name += "/inactive"
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.mode, tt.hasDelinquency, tt.hasInactive))
		})
	}
}

package policy

import "github.com/posleasing/leasesync/internal/domain"

// Decide applies the reporting-mode matrix.
//
// Strict dispatches only when both the delinquency and the inactive report
// have data; otherwise nothing is sent.
func Decide(mode domain.ReportMode, hasDelinquency, hasInactive bool) domain.ReportDecision {
	switch mode {
	case domain.ReportModeForce:
		return domain.ReportDecision{Dispatch: true, RenderDelinquency: true}
	case domain.ReportModeFlexible:
		return domain.ReportDecision{
			Dispatch:            true,
			RenderDelinquency:   hasDelinquency,
			NoDelinquencyNotice: !hasDelinquency,
		}
	case domain.ReportModeStrict:
		if hasDelinquency && hasInactive {
			return domain.ReportDecision{Dispatch: true, RenderDelinquency: true}
		}
		return domain.ReportDecision{}
	default:
		return domain.ReportDecision{}
	}
}

// Package reporting renders the monthly delinquency and inactivity reports.
package reporting

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	DelinquencyPDFName         = "ReporteMorosidad.pdf"
	DelinquencySpreadsheetName = "ReporteMorosidad.xlsx"
	InactiveSpreadsheetName    = "ReporteInactivos.xlsx"
)

// Renderer produces report files in memory
type Renderer struct {
	log      zerolog.Logger
	compress bool
}

// New creates a renderer
func New(log zerolog.Logger) *Renderer {
	return &Renderer{
		log:      log.With().Str("component", "reporting").Logger(),
		compress: true,
	}
}

// bandTitle returns the section title of a delinquency band.
func bandTitle(band int) string {
	switch band {
	case 1:
		return "Comercios con 30 días de Incobrabilidad"
	case 2:
		return "Comercios con 60 días de Incobrabilidad"
	default:
		return "Comercios con 90 días o más de Incobrabilidad"
	}
}

func bandSheet(band int) string {
	switch band {
	case 1:
		return "30 dias"
	case 2:
		return "60 dias"
	default:
		return "90 dias"
	}
}

// formatN2 renders an amount with two decimals and thousands separators.
func formatN2(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

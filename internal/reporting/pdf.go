package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"github.com/posleasing/leasesync/internal/domain"
)

const (
	pageMargin = 25.0
	logoHeight = 43.0
	headerRowH = 16.0
	bodyRowH   = 12.0
)

var (
	pdfHeaders = []string{"No", "Banco", "Retailer", "Nombre", "Monto", "Saldo", "Pte", "Inicio", "Mes", "Pos", "Estado", "Abonos", "DebC", "DebA", "Max"}
	pdfWidths  = []float64{20, 25, 45, 80, 30, 30, 20, 35, 30, 20, 35, 30, 30, 30, 30}

	bandColors = map[int][3]int{
		1: {169, 208, 142},
		2: {244, 176, 132},
		3: {247, 98, 69},
	}
)

// RenderDelinquencyPDF renders the delinquency report grouped by band.
// A logo that cannot be decoded as an image is left out.
func (r *Renderer) RenderDelinquencyPDF(records []domain.DelinquencyRecord, logo []byte) ([]byte, error) {
	r.log.Info().Int("records", len(records)).Msg("Rendering delinquency PDF")

	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle("Arrendamiento POS, Morosidad de Debitaciones", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if img, ok := r.normalizeLogo(logo); ok {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(img))
		pdf.ImageOptions("logo", pageMargin, pageMargin, 0, logoHeight, true, opts, 0, "")
		pdf.Ln(6)
	}

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pageMargin

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 18, tr("Arrendamiento POS, Morosidad de Debitaciones"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(contentW, 16, tr("Fecha Creación: "+time.Now().Format("02/01/2006 15:04:05")), "", 1, "L", false, 0, "")
	pdf.MultiCell(contentW, 14, tr("Detalle de comercios con morosidad en la debitación de Arrendamiento de Equipo Pos."), "", "J", false)
	pdf.Ln(10)

	if len(records) == 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 16, tr("No se encontraron datos de morosidad para el período seleccionado."), "", 1, "C", false, 0, "")
		return r.output(pdf)
	}

	widths := scaleWidths(pdfWidths, contentW)
	for _, band := range []int{1, 2, 3} {
		rows := filterBand(records, band)
		if len(rows) == 0 {
			continue
		}

		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW, 16, tr(bandTitle(band)), "", 1, "L", false, 0, "")
		pdf.Ln(4)

		drawHeader := func() {
			c := bandColors[band]
			pdf.SetFillColor(c[0], c[1], c[2])
			pdf.SetFont("Helvetica", "B", 10)
			for i, h := range pdfHeaders {
				pdf.CellFormat(widths[i], headerRowH, h, "1", 0, "CM", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont("Helvetica", "", 8)
		}
		drawHeader()

		_, pageH := pdf.GetPageSize()
		for _, rec := range rows {
			if pdf.GetY()+bodyRowH > pageH-pageMargin {
				pdf.AddPage()
				drawHeader()
			}
			cells := []string{
				fmt.Sprint(rec.No),
				rec.Bank,
				rec.Retailer,
				rec.Name,
				formatN2(rec.Amount),
				formatN2(rec.Balance),
				fmt.Sprint(rec.Pending),
				formatDate(rec.Start),
				rec.Month,
				fmt.Sprint(rec.Devices),
				rec.Status,
				formatN2(rec.Credits),
				formatN2(rec.ChargebackDebits),
				formatN2(rec.LeaseDebits),
				formatN2(rec.MaxPayment),
			}
			for i, c := range cells {
				pdf.CellFormat(widths[i], bodyRowH, fitText(pdf, tr, c, widths[i]-4), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(10)
	}

	return r.output(pdf)
}

func (r *Renderer) output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render delinquency PDF: %w", err)
	}
	r.log.Info().Int("bytes", buf.Len()).Msg("Delinquency PDF rendered")
	return buf.Bytes(), nil
}

// normalizeLogo decodes any supported image format and re-encodes it as a
// PNG bounded to four times the printed height.
func (r *Renderer) normalizeLogo(logo []byte) ([]byte, bool) {
	if len(logo) == 0 {
		return nil, false
	}
	img, err := imaging.Decode(bytes.NewReader(logo), imaging.AutoOrientation(true))
	if err != nil {
		r.log.Warn().Err(err).Msg("Logo is not a readable image, rendering without it")
		return nil, false
	}
	img = imaging.Fit(img, 2400, int(logoHeight*4), imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		r.log.Warn().Err(err).Msg("Failed to encode logo")
		return nil, false
	}
	return buf.Bytes(), true
}

func filterBand(records []domain.DelinquencyRecord, band int) []domain.DelinquencyRecord {
	var out []domain.DelinquencyRecord
	for _, rec := range records {
		if rec.DelinquencyBand() == band {
			out = append(out, rec)
		}
	}
	return out
}

func scaleWidths(widths []float64, total float64) []float64 {
	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	out := make([]float64, len(widths))
	for i, w := range widths {
		out[i] = w / sum * total
	}
	return out
}

// fitText truncates s so that its translated form fits in w.
func fitText(pdf *fpdf.Fpdf, tr func(string) string, s string, w float64) string {
	if pdf.GetStringWidth(tr(s)) <= w {
		return tr(s)
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > w {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

package reporting

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/posleasing/leasesync/internal/domain"
)

const (
	moneyFormat = "$#,##0.00"
	dateFormat  = "dd/mm/yyyy"
	textNumFmt  = 49 // "@"
)

var (
	delinquencyHeaders = []string{
		"No", "Banco", "Retailer", "Comercio", "Valor de Arrendamiento", "Saldo",
		"Cantidad de Meses Pendientes de liquidar", "Inicio", "Mes Pendiente de cobrar a la fecha",
		"Cantidad de POS", "Estado", "Abonos al comercio", "Debitos por Contracargos",
		"Debitos por Arrendamiento", "Pago Maximo en el mes",
	}
	inactiveHeaders = []string{
		"No", "Banco", "Retailer", "Comercio", "Valor de Arrendamiento", "Saldo",
		"Cantidad de Meses Pendientes de liquidar", "Inicio", "Fecha Desactivacion",
		"Cantidad de POS", "Estado",
	}
)

type cellKind int

const (
	kindGeneral cellKind = iota
	kindText
	kindMoney
	kindDate
)

var (
	delinquencyKinds = []cellKind{kindGeneral, kindGeneral, kindText, kindGeneral, kindMoney, kindMoney, kindGeneral, kindDate, kindGeneral, kindGeneral, kindGeneral, kindMoney, kindMoney, kindMoney, kindMoney}
	inactiveKinds    = []cellKind{kindGeneral, kindGeneral, kindText, kindGeneral, kindMoney, kindMoney, kindGeneral, kindDate, kindDate, kindGeneral, kindGeneral}
)

// workbook wraps an excelize file with the shared report styles
type workbook struct {
	f      *excelize.File
	header int
	styles map[cellKind]int
	first  bool
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	wb := &workbook{f: f, styles: make(map[cellKind]int), first: true}

	var err error
	wb.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	money, date := moneyFormat, dateFormat
	for kind, style := range map[cellKind]*excelize.Style{
		kindText:  {NumFmt: textNumFmt},
		kindMoney: {CustomNumFmt: &money},
		kindDate:  {CustomNumFmt: &date},
	} {
		id, err := f.NewStyle(style)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create cell style: %w", err)
		}
		wb.styles[kind] = id
	}
	return wb, nil
}

// addSheet writes a header row and data rows, reusing the default sheet for
// the first call.
func (wb *workbook) addSheet(name string, headers []string, kinds []cellKind, rows [][]any) error {
	if wb.first {
		wb.f.SetSheetName(wb.f.GetSheetName(0), name)
		wb.first = false
	} else if _, err := wb.f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", name, err)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := wb.f.SetCellValue(name, cell, h); err != nil {
			return err
		}
		widths[i] = utf8.RuneCountInString(h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := wb.f.SetCellStyle(name, "A1", last, wb.header); err != nil {
		return err
	}

	for r, values := range rows {
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := wb.f.SetCellValue(name, cell, v); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", name, cell, err)
			}
			if style, ok := wb.styles[kinds[c]]; ok {
				if err := wb.f.SetCellStyle(name, cell, cell, style); err != nil {
					return err
				}
			}
			if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[c] && kinds[c] != kindDate {
				widths[c] = n
			}
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(w) + 2
		if width > 60 {
			width = 60
		}
		if kinds[i] == kindDate && width < 12 {
			width = 12
		}
		if err := wb.f.SetColWidth(name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func (wb *workbook) bytes() ([]byte, error) {
	defer wb.f.Close()
	wb.f.SetActiveSheet(0)
	buf, err := wb.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDelinquencySpreadsheet writes one sheet per band, oldest debt first.
// Every band sheet is present even when it has no rows.
func (r *Renderer) RenderDelinquencySpreadsheet(records []domain.DelinquencyRecord) ([]byte, error) {
	r.log.Info().Int("records", len(records)).Msg("Rendering delinquency spreadsheet")

	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	for _, band := range []int{3, 2, 1} {
		var rows [][]any
		for _, rec := range filterBand(records, band) {
			rows = append(rows, []any{
				rec.No, rec.Bank, rec.Retailer, rec.Name,
				money(rec.Amount), money(rec.Balance), rec.Pending, excelDate(rec.Start),
				rec.Month, rec.Devices, rec.Status,
				money(rec.Credits), money(rec.ChargebackDebits), money(rec.LeaseDebits), money(rec.MaxPayment),
			})
		}
		if err := wb.addSheet(bandSheet(band), delinquencyHeaders, delinquencyKinds, rows); err != nil {
			wb.f.Close()
			return nil, fmt.Errorf("failed to render delinquency spreadsheet: %w", err)
		}
	}
	return wb.bytes()
}

// RenderInactiveSpreadsheet writes the inactive merchants sheet.
func (r *Renderer) RenderInactiveSpreadsheet(records []domain.InactiveRecord) ([]byte, error) {
	r.log.Info().Int("records", len(records)).Msg("Rendering inactive spreadsheet")

	wb, err := newWorkbook()
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			rec.No, rec.Bank, rec.Retailer, rec.Name,
			money(rec.Amount), money(rec.Balance), rec.Pending,
			excelDate(rec.Start), excelDate(rec.Withdrawal), rec.Devices, rec.Status,
		})
	}
	if err := wb.addSheet("Inactivos", inactiveHeaders, inactiveKinds, rows); err != nil {
		wb.f.Close()
		return nil, fmt.Errorf("failed to render inactive spreadsheet: %w", err)
	}
	return wb.bytes()
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// excelDate leaves missing dates blank instead of writing year 1.
func excelDate(t time.Time) any {
	if t.IsZero() {
		return ""
	}
	return t
}

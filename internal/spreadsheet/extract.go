package spreadsheet

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kanewa-tools/quote-import/internal/preset"
	"github.com/kanewa-tools/quote-import/internal/quotation"
)

// Label-search neighborhood. Cover fields are always near the top-left of
// the cover sheet in every known layout family.
const (
	labelScanMaxRow = 30
	labelScanMaxCol = 10

	// Column scan width when resolving detail columns on the header row.
	headerScanMaxCol = 30
)

// Engine extracts a quotation from a workbook using a chosen preset. It is
// read-only over the workbook and never mutates the preset.
type Engine struct {
	wb *Workbook
	p  *preset.Preset
}

// NewEngine returns an engine bound to one workbook and preset.
func NewEngine(wb *Workbook, p *preset.Preset) *Engine {
	return &Engine{wb: wb, p: p}
}

// Extract runs the cover and detail passes and returns the extracted
// quotation. Missing fields are zero values; only unreadable bytes (caught
// at Open time) are errors.
func (e *Engine) Extract() *quotation.Extracted {
	out := &quotation.Extracted{}
	out.Header = e.extractCover()
	out.LineItems = e.extractDetails()
	out.Sections = e.extractSections()
	out.AttachSections()
	return out
}

// CoverSheet resolves the cover sheet by alias, falling back to the first
// sheet of the workbook.
func (e *Engine) CoverSheet() string {
	for _, name := range e.p.CoverSheets {
		if e.wb.HasSheet(name) {
			return name
		}
	}
	if sheets := e.wb.SheetNames(); len(sheets) > 0 {
		return sheets[0]
	}
	return ""
}

// DetailSheet resolves the details sheet by alias. Presets without detail
// sheet aliases (single-sheet layouts) use the cover sheet.
func (e *Engine) DetailSheet() string {
	for _, name := range e.p.Details.SheetNames {
		if e.wb.HasSheet(name) {
			return name
		}
	}
	if len(e.p.Details.SheetNames) == 0 {
		return e.CoverSheet()
	}
	return ""
}

// extractCover pulls each header field: fixed candidate cells first, label
// search second, empty when both fail.
func (e *Engine) extractCover() quotation.Header {
	sheet := e.CoverSheet()
	if sheet == "" {
		return quotation.Header{}
	}

	value := func(f preset.FieldType) string {
		if v := e.firstNonEmpty(sheet, e.p.Cover[f]); v != "" {
			return v
		}
		if keywords := e.p.Labels[f]; len(keywords) > 0 {
			return e.labelSearch(sheet, keywords)
		}
		return ""
	}

	return quotation.Header{
		CustomerName:     value(preset.FieldCustomerName),
		Subject:          value(preset.FieldSubject),
		EstimateDate:     value(preset.FieldEstimateDate),
		EstimateNumber:   value(preset.FieldEstimateNumber),
		DeliveryPlace:    value(preset.FieldDeliveryPlace),
		DeliveryDeadline: value(preset.FieldDeliveryDeadline),
		DeliveryTerms:    value(preset.FieldDeliveryTerms),
		Validity:         value(preset.FieldValidity),
		PaymentTerms:     value(preset.FieldPaymentTerms),
		Subtotal:         ParseNumber(value(preset.FieldSubtotal)),
		TaxAmount:        ParseNumber(value(preset.FieldTaxAmount)),
		TotalAmount:      ParseNumber(value(preset.FieldTotalAmount)),
	}
}

// firstNonEmpty probes candidate cells in order and returns the first
// non-empty value.
func (e *Engine) firstNonEmpty(sheet string, candidates []string) string {
	for _, cell := range candidates {
		if v := strings.TrimSpace(e.wb.CellValue(sheet, cell)); v != "" {
			return v
		}
	}
	return ""
}

// labelSearch scans the top-left neighborhood for a cell whose text
// contains one of the keywords and reads the field value from the cell to
// its right, or the cell below when the right neighbor is empty.
func (e *Engine) labelSearch(sheet string, keywords []string) string {
	for row := 1; row <= labelScanMaxRow; row++ {
		for col := 1; col <= labelScanMaxCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				continue
			}
			text := e.wb.CellValue(sheet, cell)
			if text == "" || !containsAnyKeyword(text, keywords) {
				continue
			}

			right, _ := excelize.CoordinatesToCellName(col+1, row)
			if v := strings.TrimSpace(e.wb.CellValue(sheet, right)); v != "" {
				return v
			}
			below, _ := excelize.CoordinatesToCellName(col, row+1)
			if v := strings.TrimSpace(e.wb.CellValue(sheet, below)); v != "" {
				return v
			}
		}
	}
	return ""
}

// ResolveColumns finds each detail field's 1-based column index by
// scanning the header row for cell text containing one of the field's
// keyword candidates. The first matching column wins per field.
func (e *Engine) ResolveColumns(sheet string) map[preset.DetailField]int {
	cols := map[preset.DetailField]int{}
	header := make([]string, headerScanMaxCol+1)
	for col := 1; col <= headerScanMaxCol; col++ {
		cell, err := excelize.CoordinatesToCellName(col, e.p.Details.HeaderRow)
		if err != nil {
			continue
		}
		header[col] = e.wb.CellValue(sheet, cell)
	}

	for field, keywords := range e.p.Details.Columns {
	scan:
		for _, kw := range keywords {
			for col := 1; col <= headerScanMaxCol; col++ {
				if header[col] != "" && strings.Contains(header[col], kw) {
					cols[field] = col
					break scan
				}
			}
		}
	}
	return cols
}

// extractDetails walks the detail rows from StartRow to MaxRow: blank
// product-name rows are skipped, stop-word rows terminate the scan, every
// other row becomes one line item.
func (e *Engine) extractDetails() []quotation.LineItem {
	sheet := e.DetailSheet()
	if sheet == "" {
		return nil
	}

	cols := e.ResolveColumns(sheet)
	nameCol, ok := cols[preset.DetailProductName]
	if !ok {
		return nil
	}

	cellAt := func(col, row int) string {
		if col == 0 {
			return ""
		}
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return ""
		}
		return e.wb.CellValue(sheet, cell)
	}

	var items []quotation.LineItem
	for row := e.p.Details.StartRow; row <= e.p.Details.MaxRow; row++ {
		name := strings.TrimSpace(cellAt(nameCol, row))
		if name == "" {
			continue
		}
		if containsAnyKeyword(name, e.p.Details.StopWords) {
			break
		}

		item := quotation.LineItem{
			ItemName:  name,
			Spec:      strings.TrimSpace(cellAt(cols[preset.DetailSpec], row)),
			Unit:      strings.TrimSpace(cellAt(cols[preset.DetailUnit], row)),
			Quantity:  ParseNumber(cellAt(cols[preset.DetailQuantity], row)),
			UnitPrice: ParseNumber(cellAt(cols[preset.DetailUnitPrice], row)),
			Amount:    ParseNumber(cellAt(cols[preset.DetailAmount], row)),
			CostPrice: ParseNumber(cellAt(cols[preset.DetailCostPrice], row)),
			SourceRow: row,
		}
		items = append(items, item)
	}
	return items
}

// extractSections reads the named section list for presets that configure
// one. Sections are contiguous row ranges in source order; the scan stops
// after a run of blank rows.
func (e *Engine) extractSections() []quotation.Section {
	sc := e.p.Sections
	if sc == nil || !e.wb.HasSheet(sc.SheetName) {
		return nil
	}

	const blankRunLimit = 5

	var sections []quotation.Section
	blanks := 0
	for row := sc.StartRow; blanks < blankRunLimit; row++ {
		name := strings.TrimSpace(e.wb.CellValue(sc.SheetName, sc.NameColumn+strconv.Itoa(row)))
		if name == "" {
			blanks++
			continue
		}
		blanks = 0
		sections = append(sections, quotation.Section{
			Order:    len(sections) + 1,
			Name:     name,
			StartRow: row,
		})
	}
	return sections
}

func containsAnyKeyword(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}


package preset

import (
	"fmt"
	"strings"
)

// Workbook is the minimal spreadsheet surface the detector probes. It is
// implemented by internal/spreadsheet.Workbook.
type Workbook interface {
	SheetNames() []string
	// CellValue returns the cell's display text, or "" when the sheet or
	// cell does not exist.
	CellValue(sheet, cell string) string
}

// Probe window for the single-sheet layout scan.
const (
	probeRowStart = 30
	probeRowEnd   = 45
	probeColSpan  = 12
)

var (
	productNameMarkers = []string{"品名", "商品名", "名称"}
	quantityMarkers    = []string{"数量", "数 量"}
	priceMarkers       = []string{"単価", "金額"}
)

// Detect inspects the workbook's sheet names and a handful of probe cells
// and returns the best-matching preset. Detection is total: it always
// returns a concrete preset, falling back to the registry default when
// nothing matches.
func Detect(reg *Registry, wb Workbook) *Preset {
	sheets := wb.SheetNames()

	coverSheet := sheetContaining(sheets, "表紙")
	detailSheet := sheetContaining(sheets, "明細")

	if coverSheet != "" && detailSheet != "" {
		return detectCoverDetail(reg, wb, detailSheet)
	}

	if len(sheets) == 1 {
		return detectSingleSheet(reg, wb, sheets[0])
	}

	return reg.Default()
}

// detectCoverDetail distinguishes the cover+details layout families by
// probing the details sheet's candidate header rows.
func detectCoverDetail(reg *Registry, wb Workbook, detailSheet string) *Preset {
	// The branch-office new format puts its column headers on row 2, with
	// the product-name header (often padded with full-width spaces) in B2.
	if p, ok := reg.ByID(IDBranchNew); ok {
		probe := foldSpaces(wb.CellValue(detailSheet, "B2"))
		if containsAny(probe, productNameMarkers) {
			return p
		}
	}

	// The legacy default format keeps its headers on row 40.
	for _, cell := range []string{"A40", "B40"} {
		if containsAny(foldSpaces(wb.CellValue(detailSheet, cell)), productNameMarkers) {
			return reg.Default()
		}
	}

	return reg.Default()
}

// detectSingleSheet scans the probe window for a header row where column A
// holds a product-name marker and nearby columns hold quantity and
// unit-price/amount markers. A hit keys the vertical preset to that row;
// otherwise the wide horizontal layout is assumed.
func detectSingleSheet(reg *Registry, wb Workbook, sheet string) *Preset {
	for row := probeRowStart; row <= probeRowEnd; row++ {
		first := foldSpaces(wb.CellValue(sheet, fmt.Sprintf("A%d", row)))
		if !containsAny(first, productNameMarkers) {
			continue
		}

		var hasQuantity, hasPrice bool
		for col := 1; col < probeColSpan; col++ {
			v := foldSpaces(wb.CellValue(sheet, cellRef(col, row)))
			if v == "" {
				continue
			}
			if containsAny(v, quantityMarkers) {
				hasQuantity = true
			}
			if containsAny(v, priceMarkers) {
				hasPrice = true
			}
		}
		if hasQuantity && hasPrice {
			if p, ok := reg.ByID(IDSingleVertical); ok {
				return p.WithHeaderRow(row)
			}
		}
	}

	if p, ok := reg.ByID(IDSingleHorizontal); ok {
		return p
	}
	return reg.Default()
}

// sheetContaining returns the first sheet whose name contains the keyword.
func sheetContaining(sheets []string, keyword string) string {
	for _, s := range sheets {
		if strings.Contains(s, keyword) {
			return s
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// foldSpaces removes ASCII and full-width spaces so padded header text
// like "名　　　称" matches its marker.
func foldSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '　' {
			return -1
		}
		return r
	}, s)
}

// cellRef builds an A1-style reference from 0-based column and 1-based row.
// Columns beyond Z are not needed by the probe window.
func cellRef(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}

// Package preset defines the declarative format presets that describe where
// header fields and detail-table columns live in a known quotation layout
// family, and the detector that picks the best preset for a workbook.
package preset

// FieldType identifies a single-occurrence header field on a quotation.
type FieldType string

// Header field types.
const (
	FieldCustomerName     FieldType = "customer_name"
	FieldSubject          FieldType = "subject"
	FieldDeliveryPlace    FieldType = "delivery_place"
	FieldDeliveryDeadline FieldType = "delivery_deadline"
	FieldDeliveryTerms    FieldType = "delivery_terms"
	FieldValidity         FieldType = "validity"
	FieldPaymentTerms     FieldType = "payment_terms"
	FieldEstimateDate     FieldType = "estimate_date"
	FieldEstimateNumber   FieldType = "estimate_number"
	FieldSubtotal         FieldType = "subtotal"
	FieldTaxAmount        FieldType = "tax_amount"
	FieldTotalAmount      FieldType = "total_amount"
)

// DetailField identifies one column of the repeating line-item table.
type DetailField string

// Detail-table columns.
const (
	DetailProductName    DetailField = "product_name"
	DetailSpec           DetailField = "spec"
	DetailUnit           DetailField = "unit"
	DetailQuantity       DetailField = "quantity"
	DetailUnitPrice      DetailField = "unit_price"
	DetailAmount         DetailField = "amount"
	DetailCostPrice      DetailField = "cost_price"
	DetailCostAmount     DetailField = "cost_amount"
	DetailGrossMargin    DetailField = "gross_margin"
	DetailWholesalePrice DetailField = "wholesale_price"
)

// LayoutType distinguishes the overall orientation of a layout family.
type LayoutType string

const (
	LayoutVertical   LayoutType = "vertical"
	LayoutHorizontal LayoutType = "horizontal"
)

// Preset is an immutable description of one document layout family.
// Candidate lists are tried strictly in order; the first cell or column
// with a usable value wins.
type Preset struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Layout      LayoutType `json:"layout" yaml:"layout"`

	// CoverSheets lists sheet-name aliases for the cover sheet, tried in
	// order. When none exists the first sheet of the workbook is used.
	CoverSheets []string `json:"cover_sheets,omitempty" yaml:"cover_sheets,omitempty"`

	// Cover maps each header field to an ordered list of candidate cell
	// references on the cover sheet.
	Cover map[FieldType][]string `json:"cover,omitempty" yaml:"cover,omitempty"`

	// Labels maps a subset of header fields to label keywords used to
	// locate the field dynamically when all fixed candidates are empty.
	Labels map[FieldType][]string `json:"labels,omitempty" yaml:"labels,omitempty"`

	Details DetailConfig `json:"details" yaml:"details"`

	// Sections is set only for layout families that group line items into
	// named sections on a dedicated sheet.
	Sections *SectionConfig `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// DetailConfig describes where the line-item table lives and how to find
// its columns.
type DetailConfig struct {
	// SheetNames lists known aliases for the details sheet, tried in order
	// with exact, case-sensitive matching.
	SheetNames []string `json:"sheet_names" yaml:"sheet_names"`

	// HeaderRow is the 1-based row holding the table's own column headers.
	HeaderRow int `json:"header_row" yaml:"header_row"`
	// StartRow is the first data row.
	StartRow int `json:"start_row" yaml:"start_row"`
	// MaxRow is the scan ceiling.
	MaxRow int `json:"max_row" yaml:"max_row"`

	// StopWords terminate the row scan when found in a row's product-name
	// cell: the row and everything after it is totals/footer.
	StopWords []string `json:"stop_words" yaml:"stop_words"`

	// Columns maps each detail field to ordered header-keyword candidates
	// matched (by substring) against HeaderRow cell text.
	Columns map[DetailField][]string `json:"columns" yaml:"columns"`
}

// SectionConfig describes the sheet region holding named line-item groups.
type SectionConfig struct {
	SheetName  string `json:"sheet_name" yaml:"sheet_name"`
	NameColumn string `json:"name_column" yaml:"name_column"`
	StartRow   int    `json:"start_row" yaml:"start_row"`
}

// HeaderFields is the canonical field order used by mapping sessions and
// by the confirmation screen.
var HeaderFields = []FieldType{
	FieldCustomerName,
	FieldSubject,
	FieldEstimateDate,
	FieldEstimateNumber,
	FieldDeliveryPlace,
	FieldDeliveryDeadline,
	FieldDeliveryTerms,
	FieldValidity,
	FieldPaymentTerms,
	FieldSubtotal,
	FieldTaxAmount,
	FieldTotalAmount,
}

// FieldLabel returns the operator-facing Japanese label for a field.
func FieldLabel(f FieldType) string {
	switch f {
	case FieldCustomerName:
		return "客先名"
	case FieldSubject:
		return "件名"
	case FieldDeliveryPlace:
		return "受渡場所"
	case FieldDeliveryDeadline:
		return "受渡期日"
	case FieldDeliveryTerms:
		return "受渡条件"
	case FieldValidity:
		return "有効期限"
	case FieldPaymentTerms:
		return "支払条件"
	case FieldEstimateDate:
		return "見積日"
	case FieldEstimateNumber:
		return "見積番号"
	case FieldSubtotal:
		return "小計"
	case FieldTaxAmount:
		return "消費税"
	case FieldTotalAmount:
		return "合計金額"
	}
	return string(f)
}

// WithHeaderRow returns a copy of the preset rekeyed to the given detail
// header row, with the data rows starting immediately below it. Used by
// the detector when a probe locates the header row dynamically.
func (p *Preset) WithHeaderRow(row int) *Preset {
	c := *p
	c.Details.HeaderRow = row
	c.Details.StartRow = row + 1
	if c.Details.MaxRow <= c.Details.StartRow {
		c.Details.MaxRow = c.Details.StartRow + defaultDetailSpan
	}
	return &c
}

const defaultDetailSpan = 80

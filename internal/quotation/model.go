// Package quotation defines the canonical extracted-quotation shape shared
// by the spreadsheet and PDF import paths, and the confirmation model the
// operator edits before commit.
package quotation

import "github.com/kanewa-tools/quote-import/internal/preset"

// Header holds the single-occurrence document-level fields of a quotation.
type Header struct {
	CustomerName     string  `json:"customer_name"`
	Subject          string  `json:"subject"`
	EstimateDate     string  `json:"estimate_date"`
	EstimateNumber   string  `json:"estimate_number"`
	DeliveryPlace    string  `json:"delivery_place,omitempty"`
	DeliveryDeadline string  `json:"delivery_deadline,omitempty"`
	DeliveryTerms    string  `json:"delivery_terms,omitempty"`
	Validity         string  `json:"validity,omitempty"`
	PaymentTerms     string  `json:"payment_terms,omitempty"`
	Subtotal         float64 `json:"subtotal,omitempty"`
	TaxAmount        float64 `json:"tax_amount,omitempty"`
	TotalAmount      float64 `json:"total_amount,omitempty"`
}

// SetField assigns a field-typed value to the header. Amount fields are
// coerced through parseNum; everything else is stored as text.
func (h *Header) SetField(f preset.FieldType, value string, parseNum func(string) float64) {
	switch f {
	case preset.FieldCustomerName:
		h.CustomerName = value
	case preset.FieldSubject:
		h.Subject = value
	case preset.FieldEstimateDate:
		h.EstimateDate = value
	case preset.FieldEstimateNumber:
		h.EstimateNumber = value
	case preset.FieldDeliveryPlace:
		h.DeliveryPlace = value
	case preset.FieldDeliveryDeadline:
		h.DeliveryDeadline = value
	case preset.FieldDeliveryTerms:
		h.DeliveryTerms = value
	case preset.FieldValidity:
		h.Validity = value
	case preset.FieldPaymentTerms:
		h.PaymentTerms = value
	case preset.FieldSubtotal:
		h.Subtotal = parseNum(value)
	case preset.FieldTaxAmount:
		h.TaxAmount = parseNum(value)
	case preset.FieldTotalAmount:
		h.TotalAmount = parseNum(value)
	}
}

// LineItem is one repeating detail row of a quotation.
type LineItem struct {
	ItemName    string  `json:"item_name"`
	Spec        string  `json:"spec,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
	CostPrice   float64 `json:"cost_price,omitempty"`
	SectionName string  `json:"section_name,omitempty"`
	Note        string  `json:"note,omitempty"`

	// SourceRow is the 1-based row the item came from in the source
	// document, used to attach section ranges. Zero for rows the operator
	// added by hand.
	SourceRow int `json:"source_row,omitempty"`
}

// Section is a named grouping of line items in source order.
type Section struct {
	Order int    `json:"order"`
	Name  string `json:"name"`

	// StartRow is the first source row belonging to the section.
	StartRow int `json:"start_row,omitempty"`
}

// Extracted is the output contract of the extraction pipeline: whatever
// the automatic pass recovered, before operator review. Missing fields
// are zero values, never errors.
type Extracted struct {
	Header    Header     `json:"header"`
	LineItems []LineItem `json:"line_items"`
	Sections  []Section  `json:"sections,omitempty"`
}

// AttachSections assigns each line item the section whose contiguous row
// range contains the item's source row. Sections are ordered by start row;
// a section's range ends where the next one begins.
func (e *Extracted) AttachSections() {
	if len(e.Sections) == 0 {
		return
	}
	for i := range e.LineItems {
		row := e.LineItems[i].SourceRow
		if row == 0 {
			continue
		}
		for j := len(e.Sections) - 1; j >= 0; j-- {
			if row >= e.Sections[j].StartRow {
				e.LineItems[i].SectionName = e.Sections[j].Name
				break
			}
		}
	}
}

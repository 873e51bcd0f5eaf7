package quotation

import (
	"fmt"
)

// ValidationError is one operator-facing reason a draft cannot commit.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Draft is the import confirmation model: the extracted quotation under
// operator review. Edits to quantity or unit price recompute the line's
// amount; the amount is a derived field, not independently entered data,
// except where it was imported verbatim and never edited.
type Draft struct {
	Header   Header     `json:"header"`
	Items    []LineItem `json:"items"`
	Sections []Section  `json:"sections,omitempty"`

	// StaffID is the staff member the imported case is assigned to.
	StaffID string `json:"staff_id"`
}

// NewDraft seeds a draft from an extraction result.
func NewDraft(ex *Extracted) *Draft {
	d := &Draft{Header: ex.Header}
	d.Items = append(d.Items, ex.LineItems...)
	d.Sections = append(d.Sections, ex.Sections...)
	return d
}

// checkIndex validates a line index.
func (d *Draft) checkIndex(i int) error {
	if i < 0 || i >= len(d.Items) {
		return fmt.Errorf("line %d out of range (have %d)", i, len(d.Items))
	}
	return nil
}

// SetQuantity updates a line's quantity and recomputes its amount.
func (d *Draft) SetQuantity(i int, qty float64) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.Items[i].Quantity = qty
	d.Items[i].Amount = qty * d.Items[i].UnitPrice
	return nil
}

// SetUnitPrice updates a line's unit price and recomputes its amount.
func (d *Draft) SetUnitPrice(i int, price float64) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.Items[i].UnitPrice = price
	d.Items[i].Amount = d.Items[i].Quantity * price
	return nil
}

// SetItemText updates a line's name, spec and unit.
func (d *Draft) SetItemText(i int, name, spec, unit string) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.Items[i].ItemName = name
	d.Items[i].Spec = spec
	d.Items[i].Unit = unit
	return nil
}

// SetNote attaches a free-text comment to a line.
func (d *Draft) SetNote(i int, note string) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.Items[i].Note = note
	return nil
}

// AddItem appends a blank line for manual entry and returns its index.
func (d *Draft) AddItem() int {
	d.Items = append(d.Items, LineItem{})
	return len(d.Items) - 1
}

// RemoveItem deletes a line, preserving the order of the rest.
func (d *Draft) RemoveItem(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	return nil
}

// ItemTotal is the sum of line amounts.
func (d *Draft) ItemTotal() float64 {
	var total float64
	for _, it := range d.Items {
		total += it.Amount
	}
	return total
}

// Validate applies the required-field gate: customer, subject, staff
// assignment and at least one line item. A failing draft must not touch
// the store.
func (d *Draft) Validate() []ValidationError {
	var errs []ValidationError
	if d.Header.CustomerName == "" {
		errs = append(errs, ValidationError{Field: "customer_name", Message: "客先名を入力してください"})
	}
	if d.Header.Subject == "" {
		errs = append(errs, ValidationError{Field: "subject", Message: "件名を入力してください"})
	}
	if d.StaffID == "" {
		errs = append(errs, ValidationError{Field: "staff_id", Message: "担当者を選択してください"})
	}
	if len(d.Items) == 0 {
		errs = append(errs, ValidationError{Field: "items", Message: "明細が1行もありません"})
	}
	return errs
}

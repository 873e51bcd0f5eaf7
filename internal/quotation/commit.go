package quotation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kanewa-tools/quote-import/internal/store"
)

// InvalidDraftError carries the validation failures that blocked a
// commit. The store is untouched when this is returned.
type InvalidDraftError struct {
	Errors []ValidationError
}

func (e *InvalidDraftError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		msgs[i] = v.Error()
	}
	return "draft not committable: " + strings.Join(msgs, "; ")
}

// CommitResult reports what a successful commit created.
type CommitResult struct {
	CaseID     string `json:"case_id"`
	CaseNumber string `json:"case_number"`
	CustomerID string `json:"customer_id"`
	ItemCount  int    `json:"item_count"`
}

// Committer writes a confirmed draft to the store as a single logical
// unit. The store offers no multi-table transactions, so a failure in a
// later write step rolls back earlier writes with compensating deletes
// before surfacing the error. No automatic retry: the operator
// re-initiates the import on failure.
type Committer struct {
	st  store.Store
	now func() time.Time
}

// NewCommitter returns a committer over the store.
func NewCommitter(st store.Store) *Committer {
	return &Committer{st: st, now: time.Now}
}

// Commit validates the draft, resolves or creates the customer, generates
// a new case number and writes the header, sections and line items.
func (c *Committer) Commit(ctx context.Context, d *Draft) (*CommitResult, error) {
	if errs := d.Validate(); len(errs) > 0 {
		return nil, &InvalidDraftError{Errors: errs}
	}

	customerID, err := c.resolveCustomer(ctx, d.Header.CustomerName)
	if err != nil {
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	caseID := uuid.NewString()
	caseNumber, day, err := c.nextCaseNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate case number: %w", err)
	}

	header := store.Record{
		"id":                caseID,
		"case_number":       caseNumber,
		"import_day":        day,
		"customer_id":       customerID,
		"staff_id":          d.StaffID,
		"subject":           d.Header.Subject,
		"estimate_date":     d.Header.EstimateDate,
		"estimate_number":   d.Header.EstimateNumber,
		"delivery_place":    d.Header.DeliveryPlace,
		"delivery_deadline": d.Header.DeliveryDeadline,
		"delivery_terms":    d.Header.DeliveryTerms,
		"validity":          d.Header.Validity,
		"payment_terms":     d.Header.PaymentTerms,
		"subtotal":          d.Header.Subtotal,
		"tax_amount":        d.Header.TaxAmount,
		"total_amount":      d.Header.TotalAmount,
	}
	if _, err := c.st.Insert(ctx, "cases", []store.Record{header}); err != nil {
		return nil, fmt.Errorf("write case header: %w", err)
	}

	sectionIDs, err := c.writeSections(ctx, caseID, d.Sections)
	if err != nil {
		c.compensate(ctx, caseID)
		return nil, fmt.Errorf("write sections: %w", err)
	}

	if err := c.writeItems(ctx, caseID, d.Items, sectionIDs); err != nil {
		c.compensate(ctx, caseID)
		return nil, fmt.Errorf("write line items: %w", err)
	}

	return &CommitResult{
		CaseID:     caseID,
		CaseNumber: caseNumber,
		CustomerID: customerID,
		ItemCount:  len(d.Items),
	}, nil
}

// resolveCustomer finds the customer by exact name or creates it.
func (c *Committer) resolveCustomer(ctx context.Context, name string) (string, error) {
	rows, err := c.st.Upsert(ctx, "customers", []store.Record{{
		"id":   uuid.NewString(),
		"name": name,
	}}, "name")
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("customer %q not stored", name)
	}
	id, _ := rows[0]["id"].(string)
	if id == "" {
		return "", fmt.Errorf("customer %q has no id", name)
	}
	return id, nil
}

// nextCaseNumber generates a date-prefixed per-day sequence number.
func (c *Committer) nextCaseNumber(ctx context.Context) (number, day string, err error) {
	day = c.now().Format("20060102")
	rows, err := c.st.Select(ctx, "cases", store.Filter{"import_day": day})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Q%s-%03d", day, len(rows)+1), day, nil
}

func (c *Committer) writeSections(ctx context.Context, caseID string, sections []Section) (map[string]string, error) {
	ids := make(map[string]string, len(sections))
	var recs []store.Record
	for _, s := range sections {
		id := uuid.NewString()
		ids[s.Name] = id
		recs = append(recs, store.Record{
			"id":         id,
			"case_id":    caseID,
			"sort_order": s.Order,
			"name":       s.Name,
		})
	}
	if len(recs) == 0 {
		return ids, nil
	}
	if _, err := c.st.Insert(ctx, "case_sections", recs); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Committer) writeItems(ctx context.Context, caseID string, items []LineItem, sectionIDs map[string]string) error {
	recs := make([]store.Record, 0, len(items))
	for i, it := range items {
		rec := store.Record{
			"id":         uuid.NewString(),
			"case_id":    caseID,
			"sort_order": i + 1,
			"item_name":  it.ItemName,
			"spec":       it.Spec,
			"unit":       it.Unit,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice,
			"amount":     it.Amount,
			"cost_price": it.CostPrice,
			"note":       it.Note,
		}
		if id, ok := sectionIDs[it.SectionName]; ok && it.SectionName != "" {
			rec["section_id"] = id
		}
		recs = append(recs, rec)
	}
	_, err := c.st.Insert(ctx, "case_items", recs)
	return err
}

// compensate deletes whatever the failed commit already wrote so no
// orphaned partial case remains. Compensation failures are logged; the
// original error is what the operator sees.
func (c *Committer) compensate(ctx context.Context, caseID string) {
	for _, table := range []string{"case_items", "case_sections"} {
		if err := c.st.Delete(ctx, table, store.Filter{"case_id": caseID}); err != nil {
			log.Printf("quotation: compensating delete on %s failed: %v", table, err)
		}
	}
	if err := c.st.Delete(ctx, "cases", store.Filter{"id": caseID}); err != nil {
		log.Printf("quotation: compensating delete on cases failed: %v", err)
	}
}

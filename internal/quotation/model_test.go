package quotation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kanewa-tools/quote-import/internal/preset"
)

func TestHeaderSetField(t *testing.T) {
	parse := func(s string) float64 {
		if s == "1,000" {
			return 1000
		}
		return 0
	}

	var h Header
	h.SetField(preset.FieldCustomerName, "山田商事", parse)
	h.SetField(preset.FieldSubject, "ポンプ更新工事", parse)
	h.SetField(preset.FieldTotalAmount, "1,000", parse)

	assert.Equal(t, "山田商事", h.CustomerName)
	assert.Equal(t, "ポンプ更新工事", h.Subject)
	assert.Equal(t, float64(1000), h.TotalAmount)
}

func TestAttachSections(t *testing.T) {
	e := &Extracted{
		LineItems: []LineItem{
			{ItemName: "a", SourceRow: 3},
			{ItemName: "b", SourceRow: 10},
			{ItemName: "c", SourceRow: 25},
			{ItemName: "manual"},
		},
		Sections: []Section{
			{Order: 1, Name: "機器費", StartRow: 3},
			{Order: 2, Name: "工事費", StartRow: 20},
		},
	}
	e.AttachSections()

	assert.Equal(t, "機器費", e.LineItems[0].SectionName)
	assert.Equal(t, "機器費", e.LineItems[1].SectionName)
	assert.Equal(t, "工事費", e.LineItems[2].SectionName)
	assert.Empty(t, e.LineItems[3].SectionName, "manually added rows carry no section")
}

func TestAttachSectionsNoSections(t *testing.T) {
	e := &Extracted{LineItems: []LineItem{{ItemName: "a", SourceRow: 5}}}
	e.AttachSections()
	assert.Empty(t, e.LineItems[0].SectionName)
}

package quotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDraft() *Draft {
	return NewDraft(&Extracted{
		Header: Header{CustomerName: "山田商事", Subject: "ポンプ更新工事"},
		LineItems: []LineItem{
			{ItemName: "ポンプ", Quantity: 2, UnitPrice: 300, Amount: 600},
			{ItemName: "設置工事", Quantity: 1, UnitPrice: 50000, Amount: 50000},
		},
	})
}

func TestDraftRecomputesAmountOnQuantityEdit(t *testing.T) {
	d := newTestDraft()
	require.NoError(t, d.SetQuantity(0, 5))
	assert.Equal(t, float64(1500), d.Items[0].Amount)
}

func TestDraftRecomputesAmountOnUnitPriceEdit(t *testing.T) {
	d := newTestDraft()
	require.NoError(t, d.SetUnitPrice(0, 450))
	assert.Equal(t, float64(900), d.Items[0].Amount)
}

func TestDraftImportedAmountSurvivesUntilEdited(t *testing.T) {
	// An imported amount may disagree with quantity*unitPrice (rounding in
	// the source document). It stays as imported until either factor is
	// edited.
	d := NewDraft(&Extracted{
		Header:    Header{CustomerName: "a", Subject: "b"},
		LineItems: []LineItem{{ItemName: "x", Quantity: 3, UnitPrice: 333, Amount: 1000}},
	})
	assert.Equal(t, float64(1000), d.Items[0].Amount)

	require.NoError(t, d.SetQuantity(0, 3))
	assert.Equal(t, float64(999), d.Items[0].Amount)
}

func TestDraftIndexOutOfRange(t *testing.T) {
	d := newTestDraft()
	assert.Error(t, d.SetQuantity(2, 1))
	assert.Error(t, d.SetUnitPrice(-1, 1))
	assert.Error(t, d.SetNote(99, "x"))
	assert.Error(t, d.RemoveItem(99))
}

func TestDraftAddRemoveItem(t *testing.T) {
	d := newTestDraft()
	i := d.AddItem()
	assert.Equal(t, 2, i)
	require.NoError(t, d.SetItemText(i, "追加部材", "SUS304", "個"))
	require.NoError(t, d.SetQuantity(i, 4))
	require.NoError(t, d.SetUnitPrice(i, 250))
	assert.Equal(t, float64(1000), d.Items[i].Amount)

	require.NoError(t, d.RemoveItem(0))
	assert.Len(t, d.Items, 2)
	assert.Equal(t, "設置工事", d.Items[0].ItemName)
}

func TestDraftItemTotal(t *testing.T) {
	d := newTestDraft()
	assert.Equal(t, float64(50600), d.ItemTotal())
}

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Draft)
		wantFields []string
	}{
		{
			name:   "complete draft passes",
			mutate: func(d *Draft) { d.StaffID = "staff-1" },
		},
		{
			name:       "missing customer",
			mutate:     func(d *Draft) { d.StaffID = "staff-1"; d.Header.CustomerName = "" },
			wantFields: []string{"customer_name"},
		},
		{
			name:       "missing staff",
			mutate:     func(d *Draft) {},
			wantFields: []string{"staff_id"},
		},
		{
			name: "everything missing",
			mutate: func(d *Draft) {
				d.Header.CustomerName = ""
				d.Header.Subject = ""
				d.Items = nil
			},
			wantFields: []string{"customer_name", "subject", "staff_id", "items"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDraft()
			tt.mutate(d)

			errs := d.Validate()
			require.Len(t, errs, len(tt.wantFields))
			for i, f := range tt.wantFields {
				assert.Equal(t, f, errs[i].Field)
				assert.NotEmpty(t, errs[i].Message)
			}
		})
	}
}

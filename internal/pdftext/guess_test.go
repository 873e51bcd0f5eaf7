package pdftext

import (
	"reflect"
	"testing"
)

func TestGuessLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want GuessedItem
		ok   bool
	}{
		{
			name: "quantity and amount",
			line: "ポンプ設置工事 式 1 50,000",
			want: GuessedItem{Name: "ポンプ設置工事", Unit: "式", Quantity: 1, UnitPrice: 50000, Amount: 50000},
			ok:   true,
		},
		{
			name: "three numbers add wholesale price",
			line: "仕切バルブ V-100 2 3,000 6,000",
			want: GuessedItem{Name: "仕切バルブ V-100", Quantity: 2, UnitPrice: 3000, WholesalePrice: 3000, Amount: 6000},
			ok:   true,
		},
		{
			name: "decimal quantity",
			line: "配管材 m 12.5 1,000 12,500",
			want: GuessedItem{Name: "配管材", Unit: "m", Quantity: 12.5, UnitPrice: 1000, WholesalePrice: 1000, Amount: 12500},
			ok:   true,
		},
		{
			name: "single trailing number is not an item",
			line: "合計 50,000",
			ok:   false,
		},
		{
			name: "all numeric line is not an item",
			line: "1 2 3",
			ok:   false,
		},
		{
			name: "plain text line",
			line: "御見積書",
			ok:   false,
		},
		{
			name: "zero quantity keeps unit price zero",
			line: "予備品 0 1,000",
			want: GuessedItem{Name: "予備品", Quantity: 0, Amount: 1000},
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := guessLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("guessLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("guessLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestGuessLineItemsSkipsBlankSeparators(t *testing.T) {
	lines := []string{
		"御見積書",
		"",
		"ポンプ設置工事 式 1 50,000",
		"仕切バルブ 2 3,000 6,000",
		"",
		"以下余白",
	}
	items := GuessLineItems(lines)
	if len(items) != 2 {
		t.Fatalf("GuessLineItems() returned %d items, want 2", len(items))
	}
	if items[0].Name != "ポンプ設置工事" || items[1].Name != "仕切バルブ" {
		t.Errorf("unexpected item names: %+v", items)
	}
}

package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Well-known preset IDs.
const (
	IDBranchNew        = "branch-new"
	IDDefaultRow40     = "default-row40"
	IDSingleVertical   = "single-vertical"
	IDSingleHorizontal = "single-horizontal"
)

// Registry is a catalogue of presets. The builtin presets are static
// reference data; additional presets may be overlaid from YAML files.
type Registry struct {
	presets map[string]*Preset
	order   []string
}

// NewRegistry returns a registry holding the builtin presets.
func NewRegistry() *Registry {
	r := &Registry{presets: map[string]*Preset{}}
	for _, p := range builtinPresets() {
		r.presets[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r
}

// ByID returns the preset with the given id.
func (r *Registry) ByID(id string) (*Preset, bool) {
	p, ok := r.presets[id]
	return p, ok
}

// Default returns the fallback preset used when detection matches nothing.
func (r *Registry) Default() *Preset {
	p, _ := r.ByID(IDDefaultRow40)
	return p
}

// List returns all presets in registration order.
func (r *Registry) List() []*Preset {
	out := make([]*Preset, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.presets[id])
	}
	return out
}

// LoadOverlays reads every *.yaml/*.yml file in dir as a preset and adds it
// to the registry. An overlay with an existing id replaces the builtin.
// A missing directory is not an error.
func (r *Registry) LoadOverlays(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot read preset directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read preset file %s: %w", path, err)
		}
		var p Preset
		if err := yaml.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("invalid preset file %s: %w", path, err)
		}
		if p.ID == "" {
			return fmt.Errorf("preset file %s has no id", path)
		}
		if _, exists := r.presets[p.ID]; !exists {
			r.order = append(r.order, p.ID)
		}
		r.presets[p.ID] = &p
	}
	return nil
}

// builtinPresets constructs the four builtin layout families. The cell
// coordinates and keywords come from the branch-office document formats
// collected over years of legacy quotations.
func builtinPresets() []*Preset {
	stopWords := []string{"合計", "小計", "消費税", "以下余白", "以下、余白"}

	defaultColumns := map[DetailField][]string{
		DetailProductName:    {"品名", "商品名", "名称", "名　称"},
		DetailSpec:           {"規格", "仕様", "型式", "型番"},
		DetailUnit:           {"単位"},
		DetailQuantity:       {"数量", "数 量"},
		DetailUnitPrice:      {"単価", "単 価"},
		DetailAmount:         {"金額", "金 額"},
		DetailCostPrice:      {"原価", "仕入単価"},
		DetailCostAmount:     {"原価金額", "仕入金額"},
		DetailGrossMargin:    {"粗利", "利益"},
		DetailWholesalePrice: {"卸値", "卸単価", "仕切"},
	}

	defaultLabels := map[FieldType][]string{
		FieldCustomerName:     {"御中", "様"},
		FieldSubject:          {"件名", "件　名", "工事名"},
		FieldDeliveryPlace:    {"受渡場所", "納入場所"},
		FieldDeliveryDeadline: {"受渡期日", "納期", "納入期日"},
		FieldDeliveryTerms:    {"受渡条件", "納入条件"},
		FieldValidity:         {"有効期限", "見積有効期限"},
		FieldPaymentTerms:     {"支払条件", "御支払条件"},
		FieldEstimateDate:     {"見積日", "発行日"},
		FieldEstimateNumber:   {"見積番号", "見積No", "No."},
		FieldSubtotal:         {"小計"},
		FieldTaxAmount:        {"消費税", "税額"},
		FieldTotalAmount:      {"合計", "御見積金額", "総額"},
	}

	defaultRow40 := &Preset{
		ID:          IDDefaultRow40,
		Name:        "標準フォーマット（40行明細）",
		Description: "表紙＋明細の2シート構成。明細ヘッダーは40行目。",
		Layout:      LayoutVertical,
		CoverSheets: []string{"表紙", "鑑", "見積書"},
		Cover: map[FieldType][]string{
			FieldCustomerName:     {"B3", "A3", "B4"},
			FieldSubject:          {"C8", "B8", "C9"},
			FieldDeliveryPlace:    {"C10", "B10"},
			FieldDeliveryDeadline: {"C11", "B11"},
			FieldDeliveryTerms:    {"C12", "B12"},
			FieldValidity:         {"C13", "B13"},
			FieldPaymentTerms:     {"C14", "B14"},
			FieldEstimateDate:     {"H2", "G2", "H3"},
			FieldEstimateNumber:   {"H1", "G1"},
			FieldSubtotal:         {"F20", "E20"},
			FieldTaxAmount:        {"F21", "E21"},
			FieldTotalAmount:      {"C6", "F22", "E22"},
		},
		Labels: defaultLabels,
		Details: DetailConfig{
			SheetNames: []string{"明細", "内訳", "明細書"},
			HeaderRow:  40,
			StartRow:   41,
			MaxRow:     200,
			StopWords:  stopWords,
			Columns:    defaultColumns,
		},
	}

	branchNew := &Preset{
		ID:          IDBranchNew,
		Name:        "支店新フォーマット",
		Description: "支店展開後の新様式。明細ヘッダーは2行目、3行目からデータ。",
		Layout:      LayoutVertical,
		CoverSheets: []string{"表紙", "見積書"},
		Cover: map[FieldType][]string{
			FieldCustomerName:     {"B2", "A2", "B3"},
			FieldSubject:          {"B6", "C6"},
			FieldDeliveryPlace:    {"B8"},
			FieldDeliveryDeadline: {"B9"},
			FieldDeliveryTerms:    {"B10"},
			FieldValidity:         {"B11"},
			FieldPaymentTerms:     {"B12"},
			FieldEstimateDate:     {"G2", "F2"},
			FieldEstimateNumber:   {"G1", "F1"},
			FieldSubtotal:         {"E16"},
			FieldTaxAmount:        {"E17"},
			FieldTotalAmount:      {"B4", "E18"},
		},
		Labels: defaultLabels,
		Details: DetailConfig{
			SheetNames: []string{"明細", "明細書"},
			HeaderRow:  2,
			StartRow:   3,
			MaxRow:     300,
			StopWords:  stopWords,
			Columns:    defaultColumns,
		},
		Sections: &SectionConfig{
			SheetName:  "目次",
			NameColumn: "B",
			StartRow:   3,
		},
	}

	singleVertical := &Preset{
		ID:          IDSingleVertical,
		Name:        "1シート縦型",
		Description: "表紙と明細が同一シートに縦に並ぶ様式。ヘッダー行は検出時に決まる。",
		Layout:      LayoutVertical,
		Cover: map[FieldType][]string{
			FieldCustomerName:   {"A2", "B2", "A3"},
			FieldSubject:        {"B6", "C6", "B7"},
			FieldEstimateDate:   {"G2", "H2"},
			FieldEstimateNumber: {"G1", "H1"},
			FieldTotalAmount:    {"C10", "B10"},
		},
		Labels: defaultLabels,
		Details: DetailConfig{
			HeaderRow: 34,
			StartRow:  35,
			MaxRow:    120,
			StopWords: stopWords,
			Columns:   defaultColumns,
		},
	}

	singleHorizontal := &Preset{
		ID:          IDSingleHorizontal,
		Name:        "1シート横型",
		Description: "A4横の1シート様式。明細は上部右側から始まる。",
		Layout:      LayoutHorizontal,
		Cover: map[FieldType][]string{
			FieldCustomerName:   {"A3", "A2", "B3"},
			FieldSubject:        {"D5", "C5"},
			FieldEstimateDate:   {"L2", "K2"},
			FieldEstimateNumber: {"L1", "K1"},
			FieldTotalAmount:    {"D8", "C8"},
		},
		Labels: defaultLabels,
		Details: DetailConfig{
			HeaderRow: 11,
			StartRow:  12,
			MaxRow:    80,
			StopWords: stopWords,
			Columns:   defaultColumns,
		},
	}

	return []*Preset{defaultRow40, branchNew, singleVertical, singleHorizontal}
}

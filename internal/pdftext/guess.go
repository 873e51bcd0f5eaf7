package pdftext

import (
	"regexp"
	"strconv"
	"strings"
)

// GuessedItem is one line item inferred from linearized text by the
// heuristic guesser. Unlike cell or area lookups this is best-effort
// only: a description that happens to end in numbers (a model number, a
// size) produces false positives, so the output is always subject to
// operator edit and never committed without review.
type GuessedItem struct {
	Name           string  `json:"name"`
	Unit           string  `json:"unit,omitempty"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	Amount         float64 `json:"amount"`
	WholesalePrice float64 `json:"wholesale_price,omitempty"`
}

var numericToken = regexp.MustCompile(`^-?[0-9][0-9,]*(?:\.[0-9]+)?$`)

// unitKeywords are the unit tokens recognized between a description and
// its trailing numbers.
var unitKeywords = map[string]bool{
	"式": true, "個": true, "台": true, "本": true, "枚": true,
	"組": true, "箱": true, "巻": true, "基": true, "缶": true,
	"袋": true, "箇所": true, "人工": true, "回": true,
	"セット": true, "ｾｯﾄ": true,
	"m": true, "M": true, "㎡": true, "m2": true, "kg": true, "L": true,
}

// GuessLineItems scans each linearized line for a trailing run of up to
// three numeric tokens, optionally preceded by a unit keyword, and infers
// a line item from them. Two trailing numbers read as quantity and
// amount; three read as quantity, wholesale price and amount. Unit price
// is derived from amount and quantity.
func GuessLineItems(lines []string) []GuessedItem {
	var items []GuessedItem
	for _, line := range lines {
		if item, ok := guessLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

func guessLine(line string) (GuessedItem, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return GuessedItem{}, false
	}

	// Collect up to three trailing numeric tokens.
	var nums []float64
	i := len(tokens) - 1
	for ; i >= 0 && len(nums) < 3; i-- {
		n, ok := parseNumericToken(tokens[i])
		if !ok {
			break
		}
		nums = append([]float64{n}, nums...)
	}
	if len(nums) < 2 || i < 0 {
		return GuessedItem{}, false
	}

	var unit string
	if unitKeywords[tokens[i]] {
		unit = tokens[i]
		i--
	}
	if i < 0 {
		return GuessedItem{}, false
	}

	item := GuessedItem{
		Name: strings.Join(tokens[:i+1], " "),
		Unit: unit,
	}
	switch len(nums) {
	case 2:
		item.Quantity = nums[0]
		item.Amount = nums[1]
	case 3:
		item.Quantity = nums[0]
		item.WholesalePrice = nums[1]
		item.Amount = nums[2]
	}
	if item.Quantity != 0 {
		item.UnitPrice = item.Amount / item.Quantity
	}
	if item.Name == "" {
		return GuessedItem{}, false
	}
	return item, true
}

func parseNumericToken(s string) (float64, bool) {
	if !numericToken.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

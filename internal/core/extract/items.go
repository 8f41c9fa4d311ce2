package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingQtyPattern  = regexp.MustCompile(`^(\d{1,4})\s*[xX×]\s+(.+)$`)
	trailingQtyPattern = regexp.MustCompile(`^(.+?)\s+[xX×]\s*(\d{1,4})$`)
	labeledQtyPattern  = regexp.MustCompile(`(?i)^qty\.?:?\s*(\d{1,4})\s+(.+)$`)
)

// lineItems collects explicit quantity lines ("2 x Widget", "Widget x2", "Qty 3 Widget").
// Free text is never guessed into an item.
func lineItems(lines []string) []LineItem {
	var items []LineItem
	for _, line := range lines {
		if item, ok := parseLineItem(line); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseLineItem(line string) (LineItem, bool) {
	var qty, desc string
	if m := leadingQtyPattern.FindStringSubmatch(line); m != nil {
		qty, desc = m[1], m[2]
	} else if m := labeledQtyPattern.FindStringSubmatch(line); m != nil {
		qty, desc = m[1], m[2]
	} else if m := trailingQtyPattern.FindStringSubmatch(line); m != nil {
		desc, qty = m[1], m[2]
	} else {
		return LineItem{}, false
	}

	n, err := strconv.Atoi(qty)
	if err != nil || n <= 0 {
		return LineItem{}, false
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return LineItem{}, false
	}
	return LineItem{Description: desc, Quantity: n}, true
}

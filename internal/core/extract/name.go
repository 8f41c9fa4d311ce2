package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var defaultBoilerplate = []string{
	"invoice", "inv", "receipt", "statement", "bill", "tax", "total", "subtotal",
	"amount", "due", "balance", "date", "page", "thank", "thanks", "paid", "cash",
	"inc", "llc", "ltd", "co", "corp", "corporation", "company", "gmbh", "plc",
	"store", "shop", "supply", "supplies", "wholesale", "distributors", "distribution",
	"services", "logistics", "delivery", "order", "qty", "quantity", "description",
	"price", "item", "items", "signature", "tel", "phone", "fax", "email", "www",
}

// customerLabelPattern matches an explicit customer label, capturing any inline value.
var customerLabelPattern = regexp.MustCompile(
	`(?i)^(?:bill(?:ed)?\s+to|ship\s+to|sold\s+to|deliver(?:y)?\s+to|customer(?:\s+name)?|name|attn)\s*[:-]\s*(.*)$`,
)

const (
	nameMinLen = 2
	nameMaxLen = 60
)

// customerName returns the line index the name came from, the name and its outcome.
// The index is -1 when no name was found.
func (e *Extractor) customerName(lines []string) (int, string, Outcome) {
	for i, line := range lines {
		m := customerLabelPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if value := strings.TrimSpace(m[1]); value != "" {
			if e.isName(value) {
				return i, value, OutcomeMatched
			}
			continue
		}
		if i+1 < len(lines) && e.isName(lines[i+1]) {
			return i + 1, lines[i+1], OutcomeMatched
		}
	}

	for i, line := range lines {
		if e.isName(line) {
			return i, line, OutcomeMatched
		}
	}
	return -1, "", OutcomeNotFound
}

// isName applies the position-independent name checks: reasonable length, no
// digits, mostly letters, not a label, not boilerplate, not a street line.
func (e *Extractor) isName(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < nameMinLen || n > nameMaxLen {
		return false
	}
	if hasDigit(line) || strings.ContainsAny(line, ":@#/") {
		return false
	}

	var letters, other int
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r), r == '.', r == '\'', r == '-', r == ',':
		default:
			other++
		}
	}
	if letters < nameMinLen || other > 0 {
		return false
	}

	ws := words(line)
	if len(ws) == 0 {
		return false
	}
	for _, w := range ws {
		if e.boilerplate[w] {
			return false
		}
	}
	return !e.streetSuffixes[ws[len(ws)-1]]
}

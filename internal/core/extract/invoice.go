package extract

import (
	"regexp"
	"strings"
)

// invoicePattern anchors on a label ("invoice", "inv", "#") optionally followed by
// "no"/"number" and separators, then captures the token. "INV-" glued to a digit
// is read as part of the number.
//
// Groups: 1 glued number, 2 bare "#" label, 3 token after a label.
var invoicePattern = regexp.MustCompile(
	`(?i)\b(inv-[0-9][a-z0-9/-]*)|(?:\binv(?:oice)?\b\.?|(#))\s*(?:(?:no|num|number|nbr)\b\.?\s*)?[:#-]*\s*([a-z0-9][a-z0-9/-]*)`,
)

// invoiceNumber returns the first labeled invoice token in text order.
func (e *Extractor) invoiceNumber(lines []string) (string, Outcome) {
	var found []string
	for _, line := range lines {
		for _, m := range invoicePattern.FindAllStringSubmatch(line, -1) {
			raw := m[1]
			if raw == "" {
				raw = m[3]
				// A bare "#" also labels phone and account numbers.
				if m[2] != "" && isPhone(strings.TrimRight(raw, "-/")) {
					continue
				}
			}
			if token, ok := e.invoiceToken(raw); ok {
				found = append(found, token)
			}
		}
	}
	return pick(found)
}

// invoiceToken validates a captured token: bounded length and at least one digit.
func (e *Extractor) invoiceToken(raw string) (string, bool) {
	token := strings.TrimRight(raw, "-/")
	if len(token) < invoiceMinLen || len(token) > e.invoiceMaxLen {
		return "", false
	}
	if !hasDigit(token) {
		return "", false
	}
	return token, true
}

// isPhone reports whether token as a whole reads as a phone number.
func isPhone(token string) bool {
	if phonePattern.FindString(token) != token {
		return false
	}
	_, ok := phoneDigits(token, 0, len(token))
	return ok
}

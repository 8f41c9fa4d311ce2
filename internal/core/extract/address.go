package extract

import (
	"regexp"
	"strings"
)

var defaultStreetSuffixes = []string{
	"st", "street", "ave", "av", "avenue", "rd", "road", "blvd", "boulevard",
	"dr", "drive", "ln", "lane", "ct", "court", "way", "pl", "place", "ter",
	"terrace", "cir", "circle", "hwy", "highway", "pkwy", "parkway", "sq",
}

var (
	// cityLinePattern matches a "City, ST 12345" or "City ST 12345-6789" line.
	cityLinePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]*,?\s+[A-Za-z]{2}\.?\s+\d{5}(?:-\d{4})?$`)
	// unitLinePattern matches a secondary address line such as "Apt 4B" or "Suite 200".
	unitLinePattern = regexp.MustCompile(`(?i)^(?:apt|apartment|suite|ste|unit|bldg|building|floor|fl)\.?\s+\S+`)
)

// nameWindow is how many lines after the customer name may hold the street line.
const nameWindow = 2

// address returns the street address. Without a street-suffix token anywhere in
// the text the field stays empty rather than guessing.
func (e *Extractor) address(lines []string, nameIdx int) (string, Outcome) {
	var streetIdx []int
	for i, line := range lines {
		if e.isStreetLine(line) {
			streetIdx = append(streetIdx, i)
		}
	}
	if len(streetIdx) == 0 {
		return "", OutcomeNotFound
	}

	if nameIdx >= 0 {
		for _, i := range streetIdx {
			if i > nameIdx && i <= nameIdx+nameWindow {
				return e.addressFrom(lines, i), OutcomeMatched
			}
		}
	}

	// Without a name anchor prefer a line with a house number.
	preferred := streetIdx[0]
	for _, i := range streetIdx {
		if hasDigit(lines[i]) {
			preferred = i
			break
		}
	}

	values := make([]string, 0, len(streetIdx))
	values = append(values, lines[preferred])
	for _, i := range streetIdx {
		if i != preferred {
			values = append(values, lines[i])
		}
	}
	_, outcome := pick(values)
	return e.addressFrom(lines, preferred), outcome
}

// isStreetLine reports whether a non-leading word of line is a street suffix.
// The leading word is skipped so that titles like "Dr" do not count.
func (e *Extractor) isStreetLine(line string) bool {
	ws := words(line)
	for i := 1; i < len(ws); i++ {
		if e.streetSuffixes[ws[i]] {
			return true
		}
	}
	return false
}

// addressFrom joins the street line with a following unit and city/state/zip line.
func (e *Extractor) addressFrom(lines []string, idx int) string {
	parts := []string{strings.TrimRight(lines[idx], ",")}
	next := idx + 1
	if next < len(lines) && unitLinePattern.MatchString(lines[next]) {
		parts = append(parts, strings.TrimRight(lines[next], ","))
		next++
	}
	if next < len(lines) && cityLinePattern.MatchString(lines[next]) {
		parts = append(parts, lines[next])
	}
	return strings.Join(parts, ", ")
}

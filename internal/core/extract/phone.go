package extract

import "regexp"

// phonePattern matches NANP-style digit groups: optional country digit, area code
// (optionally parenthesized), exchange and line, separated by space, dot or dash.
var phonePattern = regexp.MustCompile(`(?:\+?\d[ .-]?)?\(?\d{3}\)?[ .-]?\d{3}[ .-]?\d{4}`)

const (
	localPhoneDigits = 10
	countryDigit     = '1'
)

// phoneNumber returns the first valid phone number, digits only.
func phoneNumber(lines []string) (string, Outcome) {
	var found []string
	for _, line := range lines {
		for _, loc := range phonePattern.FindAllStringIndex(line, -1) {
			if digits, ok := phoneDigits(line, loc[0], loc[1]); ok {
				found = append(found, digits)
			}
		}
	}
	return pick(found)
}

// phoneDigits validates the match at line[start:end]. A match glued to further
// digits or letters is part of a longer token and is discarded whole.
func phoneDigits(line string, start, end int) (string, bool) {
	if start > 0 && isAlnum(line[start-1]) {
		return "", false
	}
	if end < len(line) && isAlnum(line[end]) {
		return "", false
	}

	digits := digitsOnly(line[start:end])
	switch {
	case len(digits) == localPhoneDigits:
		return digits, true
	case len(digits) == localPhoneDigits+1 && digits[0] == countryDigit:
		return digits, true
	default:
		return "", false
	}
}

// Package extract turns raw recognized invoice text into a candidate delivery record.
// This is part of the Functional Core - no I/O, only pure functions.
//
// Every field has its own rule and every rule reads the whole text, so a field
// that cannot be found never disturbs the others. Extraction never fails: the
// worst case is a candidate whose fields are all empty and NotFound.
package extract

import "strings"

// Outcome records how a candidate field was obtained.
type Outcome string

const (
	// OutcomeMatched means exactly one structurally valid value was found.
	OutcomeMatched Outcome = "matched"
	// OutcomeAmbiguous means the first value was taken but other distinct values exist.
	OutcomeAmbiguous Outcome = "ambiguous"
	// OutcomeNotFound means the field is empty and needs manual entry.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeOverridden marks a value entered by the operator. Extract never produces it.
	OutcomeOverridden Outcome = "overridden"
)

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeMatched, OutcomeAmbiguous, OutcomeNotFound, OutcomeOverridden:
		return true
	}
	return false
}

// LineItem is one delivered line from the invoice body.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity,omitempty"`
}

// Outcomes holds the per-field extraction outcome.
type Outcomes struct {
	InvoiceNumber   Outcome
	CustomerName    Outcome
	CustomerAddress Outcome
	CustomerPhone   Outcome
}

// Candidate is the best-effort record produced from one block of text.
type Candidate struct {
	InvoiceNumber   string
	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
	Items           []LineItem
	Outcomes        Outcomes
}

// Options tunes an Extractor. Zero values select the defaults.
type Options struct {
	// InvoiceMaxLen bounds the invoice token length. Longer tokens are discarded.
	InvoiceMaxLen int
	// Boilerplate adds letterhead words that disqualify a line as a customer name.
	Boilerplate []string
	// StreetSuffixes adds street-type tokens recognized in addresses.
	StreetSuffixes []string
}

const (
	defaultInvoiceMaxLen = 20
	invoiceMinLen        = 3
)

// Extractor applies the field rules. It is immutable after New and safe for
// concurrent use.
type Extractor struct {
	invoiceMaxLen  int
	boilerplate    map[string]bool
	streetSuffixes map[string]bool
}

// New builds an Extractor from opts.
func New(opts Options) *Extractor {
	maxLen := opts.InvoiceMaxLen
	if maxLen < invoiceMinLen {
		maxLen = defaultInvoiceMaxLen
	}
	return &Extractor{
		invoiceMaxLen:  maxLen,
		boilerplate:    wordSet(defaultBoilerplate, opts.Boilerplate),
		streetSuffixes: wordSet(defaultStreetSuffixes, opts.StreetSuffixes),
	}
}

var defaultExtractor = New(Options{})

// Extract runs the default extractor over text.
func Extract(text string) Candidate {
	return defaultExtractor.Extract(text)
}

// Extract produces a candidate from text. Identical input always yields identical output.
func (e *Extractor) Extract(text string) Candidate {
	lines := normalize(text)

	var c Candidate
	c.InvoiceNumber, c.Outcomes.InvoiceNumber = e.invoiceNumber(lines)
	c.CustomerPhone, c.Outcomes.CustomerPhone = phoneNumber(lines)

	nameIdx, name, nameOutcome := e.customerName(lines)
	c.CustomerName, c.Outcomes.CustomerName = name, nameOutcome
	c.CustomerAddress, c.Outcomes.CustomerAddress = e.address(lines, nameIdx)

	c.Items = lineItems(lines)
	return c
}

func wordSet(defaults, extra []string) map[string]bool {
	set := make(map[string]bool, len(defaults)+len(extra))
	for _, w := range defaults {
		set[w] = true
	}
	for _, w := range extra {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = true
		}
	}
	return set
}

// pick returns the first value and its outcome given candidates in text order.
func pick(values []string) (string, Outcome) {
	if len(values) == 0 {
		return "", OutcomeNotFound
	}
	first := values[0]
	for _, v := range values[1:] {
		if !strings.EqualFold(v, first) {
			return first, OutcomeAmbiguous
		}
	}
	return first, OutcomeMatched
}

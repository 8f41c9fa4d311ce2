package extract

import (
	"reflect"
	"testing"
)

func TestExtract_CompleteInvoice(t *testing.T) {
	got := Extract("INVOICE #A1234\nJohn Smith\n42 Oak Ave\n555-010-2020")

	want := Candidate{
		InvoiceNumber:   "A1234",
		CustomerName:    "John Smith",
		CustomerAddress: "42 Oak Ave",
		CustomerPhone:   "5550102020",
		Outcomes: Outcomes{
			InvoiceNumber:   OutcomeMatched,
			CustomerName:    OutcomeMatched,
			CustomerAddress: OutcomeMatched,
			CustomerPhone:   OutcomeMatched,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}
}

func TestExtract_NoStreetSuffix(t *testing.T) {
	got := Extract("INVOICE #A1234\nJohn Smith\nPO Box 12\n555-010-2020")

	if got.CustomerAddress != "" {
		t.Errorf("CustomerAddress = %q, want empty", got.CustomerAddress)
	}
	if got.Outcomes.CustomerAddress != OutcomeNotFound {
		t.Errorf("address outcome = %q, want %q", got.Outcomes.CustomerAddress, OutcomeNotFound)
	}
	if got.InvoiceNumber != "A1234" || got.Outcomes.InvoiceNumber != OutcomeMatched {
		t.Errorf("invoice = %q (%s), want A1234 (matched)", got.InvoiceNumber, got.Outcomes.InvoiceNumber)
	}
	if got.CustomerName != "John Smith" || got.Outcomes.CustomerName != OutcomeMatched {
		t.Errorf("name = %q (%s), want John Smith (matched)", got.CustomerName, got.Outcomes.CustomerName)
	}
	if got.CustomerPhone != "5550102020" || got.Outcomes.CustomerPhone != OutcomeMatched {
		t.Errorf("phone = %q (%s), want 5550102020 (matched)", got.CustomerPhone, got.Outcomes.CustomerPhone)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	got := Extract("")

	want := Candidate{
		Outcomes: Outcomes{
			InvoiceNumber:   OutcomeNotFound,
			CustomerName:    OutcomeNotFound,
			CustomerAddress: OutcomeNotFound,
			CustomerPhone:   OutcomeNotFound,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract(\"\") = %+v, want %+v", got, want)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "ACME SUPPLY CO\nInvoice No. 778-B\nBill To: Maria Lopez\n9 Harbor Rd\nPortland, OR 97201\n(503) 555-0199\n2 x Crate\n"

	first := Extract(text)
	for i := 0; i < 5; i++ {
		if again := Extract(text); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestExtract_Totality(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"    \t  ",
		"#",
		"INVOICE",
		"invoice #",
		"\xff\xfe\xfd",
		"555-010-2020 555-010-2020 555-010-2020",
		"St Ave Rd Blvd",
		"x 2\n2 x\nQty",
		"Bill To:",
		"Bill To:\n",
		"ＩＮＶＯＩＣＥ ＃Ａ１２３４",
		string(make([]byte, 4096)),
	}

	for _, in := range inputs {
		c := Extract(in)
		assertFieldConsistent(t, in, "invoice", c.InvoiceNumber, c.Outcomes.InvoiceNumber)
		assertFieldConsistent(t, in, "name", c.CustomerName, c.Outcomes.CustomerName)
		assertFieldConsistent(t, in, "address", c.CustomerAddress, c.Outcomes.CustomerAddress)
		assertFieldConsistent(t, in, "phone", c.CustomerPhone, c.Outcomes.CustomerPhone)
	}
}

func assertFieldConsistent(t *testing.T, input, field, value string, outcome Outcome) {
	t.Helper()
	if !outcome.Valid() || outcome == OutcomeOverridden {
		t.Errorf("input %q: %s outcome %q is not an extraction outcome", input, field, outcome)
	}
	if (value == "") != (outcome == OutcomeNotFound) {
		t.Errorf("input %q: %s = %q with outcome %q", input, field, value, outcome)
	}
}

func TestExtract_FullWidthText(t *testing.T) {
	got := Extract("ＩＮＶＯＩＣＥ ＃Ａ１２３４")
	if got.InvoiceNumber != "A1234" {
		t.Errorf("InvoiceNumber = %q, want A1234", got.InvoiceNumber)
	}
}

func TestNew_Options(t *testing.T) {
	e := New(Options{
		Boilerplate:    []string{"Smith"},
		StreetSuffixes: []string{" Loop "},
	})

	got := e.Extract("John Smith\nMary Jones\n7 Cedar Loop")

	if got.CustomerName != "Mary Jones" {
		t.Errorf("CustomerName = %q, want Mary Jones", got.CustomerName)
	}
	if got.CustomerAddress != "7 Cedar Loop" {
		t.Errorf("CustomerAddress = %q, want 7 Cedar Loop", got.CustomerAddress)
	}
	if got.Outcomes.CustomerAddress != OutcomeMatched {
		t.Errorf("address outcome = %q, want matched", got.Outcomes.CustomerAddress)
	}
}

func TestNew_InvoiceMaxLen(t *testing.T) {
	e := New(Options{InvoiceMaxLen: 5})

	if got := e.Extract("Invoice #A12345"); got.InvoiceNumber != "" {
		t.Errorf("InvoiceNumber = %q, want empty for token over the bound", got.InvoiceNumber)
	}
	if got := e.Extract("Invoice #A1234"); got.InvoiceNumber != "A1234" {
		t.Errorf("InvoiceNumber = %q, want A1234", got.InvoiceNumber)
	}
}

func FuzzExtract(f *testing.F) {
	f.Add("INVOICE #A1234\nJohn Smith\n42 Oak Ave\n555-010-2020")
	f.Add("")
	f.Add("Bill To:\nCarlos Ruiz\n100 Main St\nApt 4B\nSpringfield, IL 62704")
	f.Add("+1 (555) 010-2020 x 3")

	f.Fuzz(func(t *testing.T, text string) {
		c := Extract(text)
		assertFieldConsistent(t, text, "invoice", c.InvoiceNumber, c.Outcomes.InvoiceNumber)
		assertFieldConsistent(t, text, "name", c.CustomerName, c.Outcomes.CustomerName)
		assertFieldConsistent(t, text, "address", c.CustomerAddress, c.Outcomes.CustomerAddress)
		assertFieldConsistent(t, text, "phone", c.CustomerPhone, c.Outcomes.CustomerPhone)
		for _, item := range c.Items {
			if item.Quantity <= 0 || item.Description == "" {
				t.Errorf("invalid item %+v from %q", item, text)
			}
		}
	})
}

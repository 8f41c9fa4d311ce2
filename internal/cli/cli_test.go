package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// run executes one command line against dir on its own session, the way
// main does, and returns its output.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	s := NewSession()
	defer s.Close(io.Discard)

	root := NewRootCmd(s)
	root.SetArgs(append([]string{"--dir", dir}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func newWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ROUTESLIP_LOG_LEVEL", "error")

	if _, err := run(t, dir, "", "init", "--operator", "driver-7"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	return dir
}

func writeTranscript(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := newWorkspace(t)

	if _, err := run(t, dir, "", "init"); err == nil {
		t.Error("expected init to refuse an existing config")
	}
	if _, err := run(t, dir, "", "init", "--force"); err != nil {
		t.Errorf("expected --force to succeed, got %v", err)
	}
}

func TestImportListMoveExport(t *testing.T) {
	dir := newWorkspace(t)
	a := writeTranscript(t, dir, "a.txt", "INVOICE #A1234\nJohn Smith\n42 Oak Ave\n555-010-2020")
	b := writeTranscript(t, dir, "b.txt", "INVOICE #B-2\nJane Roe\n7 Pine St")

	out, err := run(t, dir, "", "import", "--yes", a, b)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if strings.Count(out, "Saved delivery") != 2 {
		t.Fatalf("expected two saved deliveries, got %q", out)
	}

	out, err = run(t, dir, "", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Index(out, "A1234") > strings.Index(out, "B-2") {
		t.Errorf("expected capture order, got %q", out)
	}

	out, err = run(t, dir, "", "export", "--format", "json", "--from", "2000-01-01", "--to", "2100-01-01")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var rows []struct {
		ID            string `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("expected JSON export, got %q: %v", out, err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	if _, err := run(t, dir, "", "move", rows[1].ID, "0"); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	out, _ = run(t, dir, "", "list")
	if strings.Index(out, "B-2") > strings.Index(out, "A1234") {
		t.Errorf("expected B-2 first after move, got %q", out)
	}

	out, err = run(t, dir, "", "history", rows[0].ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "driver-7") || !strings.Contains(out, "reorder") {
		t.Errorf("expected operator and reorder in history, got %q", out)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	first := newWorkspace(t)
	second := newWorkspace(t)
	path := writeTranscript(t, first, "a.txt", "INVOICE #A1234\nJohn Smith")

	s := NewSession()
	defer s.Close(io.Discard)
	var out bytes.Buffer
	root := NewRootCmd(s)
	root.SetArgs([]string{"--dir", first, "import", "--yes", path})
	root.SetIn(strings.NewReader(""))
	root.SetOut(&out)
	root.SetErr(&out)
	if err := root.Execute(); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	got, err := run(t, second, "", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Contains(got, "A1234") {
		t.Errorf("expected second workspace to be empty, got %q", got)
	}

	app, err := s.App()
	if err != nil {
		t.Fatalf("expected first session still open, got %v", err)
	}
	if app.Config.Operator.ID != "driver-7" {
		t.Errorf("expected operator driver-7, got %q", app.Config.Operator.ID)
	}

	if err := s.Close(io.Discard); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := s.App(); err == nil {
		t.Error("expected no open store after Close")
	}
}

func TestDeliverRejectsSecondTransition(t *testing.T) {
	dir := newWorkspace(t)
	path := writeTranscript(t, dir, "a.txt", "INVOICE #A1234\nJohn Smith\n42 Oak Ave")
	if _, err := run(t, dir, "", "import", "--yes", path); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	out, _ := run(t, dir, "", "export", "--format", "json", "--from", "2000-01-01", "--to", "2100-01-01")
	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil || len(rows) != 1 {
		t.Fatalf("expected one exported row, got %q", out)
	}

	if _, err := run(t, dir, "", "cancel", rows[0].ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := run(t, dir, "", "deliver", rows[0].ID); err == nil {
		t.Error("expected delivering a cancelled delivery to fail")
	}
}

func TestShell_KeepsPendingCandidates(t *testing.T) {
	dir := newWorkspace(t)
	path := writeTranscript(t, dir, "a.txt", "INVOICE #A1234\nJohn Smith")

	script := strings.Join([]string{
		"import " + path,
		"s",
		"pending",
		"exit",
	}, "\n") + "\n"

	out, err := run(t, dir, script, "shell")
	if err != nil {
		t.Fatalf("shell failed: %v", err)
	}
	if !strings.Contains(out, "left pending") {
		t.Errorf("expected candidate skipped, got %q", out)
	}
	if strings.Contains(out, "No pending candidates") || !strings.Contains(out, "A1234") {
		t.Errorf("expected candidate still pending in shell, got %q", out)
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		line     string
		expected []string
		wantErr  bool
	}{
		{"list", []string{"list"}, false},
		{"  note D-1 leave at back \n", []string{"note", "D-1", "leave", "at", "back"}, false},
		{`edit D-1 --name "Ada Park"`, []string{"edit", "D-1", "--name", "Ada Park"}, false},
		{`note D-1 'it''s'`, []string{"note", "D-1", "its"}, false},
		{`note D-1 ""`, []string{"note", "D-1", ""}, false},
		{"", nil, false},
		{`edit "unterminated`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := splitWords(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") || len(got) != len(tt.expected) {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExportRange(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	now := time.Date(2026, 3, 5, 15, 30, 0, 0, loc)

	tests := []struct {
		name      string
		from, to  string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{"today", "", "", time.Date(2026, 3, 5, 0, 0, 0, 0, loc), time.Date(2026, 3, 6, 0, 0, 0, 0, loc), false},
		{"date bounds", "2026-03-01", "2026-03-03", time.Date(2026, 3, 1, 0, 0, 0, 0, loc), time.Date(2026, 3, 3, 0, 0, 0, 0, loc), false},
		{"from only", "2026-03-01", "", time.Date(2026, 3, 1, 0, 0, 0, 0, loc), time.Date(2026, 3, 2, 0, 0, 0, 0, loc), false},
		{"rfc3339", "2026-03-01T08:00:00Z", "2026-03-01T12:00:00Z", time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), false},
		{"bad from", "yesterday", "", time.Time{}, time.Time{}, true},
		{"bad to", "", "03/01/2026", time.Time{}, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := exportRange(tt.from, tt.to, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("expected [%v, %v), got [%v, %v)", tt.wantStart, tt.wantEnd, start, end)
			}
		})
	}
}

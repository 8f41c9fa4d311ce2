package delivery

import "testing"

func TestApplyUpdate(t *testing.T) {
	tests := []struct {
		name         string
		ctx          UpdateContext
		wantAllowed  bool
		wantStatus   Status
		wantPromoted bool
	}{
		{
			name:        "open stays open",
			ctx:         UpdateContext{RecordID: "D-1", CurrentStatus: StatusOpen, RequestedStatus: StatusOpen},
			wantAllowed: true,
			wantStatus:  StatusOpen,
		},
		{
			name:         "signature promotes open record",
			ctx:          UpdateContext{RecordID: "D-1", CurrentStatus: StatusOpen, RequestedStatus: StatusOpen, Signature: "sig.png"},
			wantAllowed:  true,
			wantStatus:   StatusDelivered,
			wantPromoted: true,
		},
		{
			name:        "whitespace signature does not promote",
			ctx:         UpdateContext{RecordID: "D-1", CurrentStatus: StatusOpen, RequestedStatus: StatusOpen, Signature: "  "},
			wantAllowed: true,
			wantStatus:  StatusOpen,
		},
		{
			name:        "explicit delivery with signature",
			ctx:         UpdateContext{RecordID: "D-1", CurrentStatus: StatusOpen, RequestedStatus: StatusDelivered, Signature: "sig.png"},
			wantAllowed: true,
			wantStatus:  StatusDelivered,
		},
		{
			name:        "signature cleared on delivered record keeps status",
			ctx:         UpdateContext{RecordID: "D-1", CurrentStatus: StatusDelivered, RequestedStatus: StatusDelivered},
			wantAllowed: true,
			wantStatus:  StatusDelivered,
		},
		{
			name:        "signature on cancelled record rejected",
			ctx:         UpdateContext{RecordID: "D-1", CurrentStatus: StatusCancelled, RequestedStatus: StatusCancelled, Signature: "sig.png"},
			wantAllowed: false,
		},
		{
			name:        "cancel with signature rejected",
			ctx:         UpdateContext{RecordID: "D-1", CurrentStatus: StatusOpen, RequestedStatus: StatusCancelled, Signature: "sig.png"},
			wantAllowed: false,
		},
		{
			name:        "delivered back to open rejected",
			ctx:         UpdateContext{RecordID: "D-1", CurrentStatus: StatusDelivered, RequestedStatus: StatusOpen},
			wantAllowed: false,
		},
		{
			name:        "signature on delivered record requesting open still rejected",
			ctx:         UpdateContext{RecordID: "D-1", CurrentStatus: StatusDelivered, RequestedStatus: StatusOpen, Signature: "sig.png"},
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, check := ApplyUpdate(tt.ctx)
			if check.Allowed != tt.wantAllowed {
				t.Fatalf("Allowed = %v, want %v (reason %q)", check.Allowed, tt.wantAllowed, check.Reason)
			}
			if !tt.wantAllowed {
				return
			}
			if result.NewStatus != tt.wantStatus {
				t.Errorf("NewStatus = %q, want %q", result.NewStatus, tt.wantStatus)
			}
			if result.Promoted != tt.wantPromoted {
				t.Errorf("Promoted = %v, want %v", result.Promoted, tt.wantPromoted)
			}
		})
	}
}

// Every accepted update keeps status monotone: the new status is the current
// one or reachable from open.
func TestApplyUpdate_Monotonic(t *testing.T) {
	statuses := []Status{StatusOpen, StatusDelivered, StatusCancelled}
	for _, cur := range statuses {
		for _, req := range statuses {
			for _, sig := range []string{"", "sig.png"} {
				result, check := ApplyUpdate(UpdateContext{RecordID: "D-1", CurrentStatus: cur, RequestedStatus: req, Signature: sig})
				if !check.Allowed {
					continue
				}
				if cur.Terminal() && result.NewStatus != cur {
					t.Errorf("%s -> %s (sig %q) produced %s", cur, req, sig, result.NewStatus)
				}
				if sig != "" && result.NewStatus != StatusDelivered {
					t.Errorf("signed record persisted as %s", result.NewStatus)
				}
			}
		}
	}
}

func TestIsConfirmed(t *testing.T) {
	tests := []struct {
		name string
		ctx  ConfirmationContext
		want bool
	}{
		{"matched", ConfirmationContext{InvoiceNumber: "A1234", InvoiceOutcome: "matched"}, true},
		{"overridden", ConfirmationContext{InvoiceNumber: "A1234", InvoiceOutcome: "overridden"}, true},
		{"ambiguous", ConfirmationContext{InvoiceNumber: "A1234", InvoiceOutcome: "ambiguous"}, false},
		{"empty number", ConfirmationContext{InvoiceNumber: "", InvoiceOutcome: "overridden"}, false},
		{"not found", ConfirmationContext{InvoiceNumber: "", InvoiceOutcome: "not_found"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfirmed(tt.ctx); got != tt.want {
				t.Errorf("IsConfirmed() = %v, want %v", got, tt.want)
			}
		})
	}
}

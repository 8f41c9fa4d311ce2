package wire

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/routeslip/internal/config"
	"github.com/example/routeslip/internal/db"
	"github.com/example/routeslip/internal/ports/primary"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = db.MemoryPath
	cfg.Capture.Inbox = filepath.Join(t.TempDir(), "inbox")
	cfg.Log.Level = "error"
	return cfg
}

func TestNew_WiresServices(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	d, err := a.Deliveries.CreateDelivery(ctx, primary.CreateDeliveryRequest{InvoiceNumber: "A1234"})
	if err != nil {
		t.Fatalf("CreateDelivery failed: %v", err)
	}

	history, err := a.History.ListHistory(ctx, d.ID, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(history) != 1 || history[0].Action != "create" {
		t.Errorf("expected one create entry, got %+v", history)
	}

	families, err := a.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected registered metrics")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Capture.Workers = 0

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestApp_Seed(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if err := a.Seed(); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	list, err := a.Deliveries.ListDeliveries(ctx, primary.DeliveryFilters{})
	if err != nil {
		t.Fatalf("ListDeliveries failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 seeded deliveries, got %d", len(list))
	}
	if list[2].Confirmed {
		t.Error("expected seeded delivery without invoice number to be unconfirmed")
	}

	if err := a.Seed(); err == nil {
		t.Error("expected second seed to be refused")
	}
}

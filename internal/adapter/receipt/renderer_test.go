package receipt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/usecase"
)

func sampleDocument() usecase.ReceiptDocument {
	item := model.NewOrderItem(7, 2, decimal.RequireFromString("12.5"))
	return usecase.ReceiptDocument{
		Number: "RCP-000001",
		Order: model.Order{
			Number:   "ORD-20240101-ABCDEF12",
			Customer: model.Customer{Name: "Ada"},
			Items:    []model.OrderItem{item},
			Subtotal: decimal.RequireFromString("25"),
			Tax:      decimal.RequireFromString("2.5"),
			Discount: decimal.RequireFromString("1"),
			Total:    decimal.RequireFromString("26.5"),
		},
		Payment:  model.Payment{Method: model.PaymentMethodCard, Amount: decimal.RequireFromString("26.5")},
		IssuedAt: time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestRenderWritesReceipt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	r := NewFileRenderer(dir)

	path, err := r.Render(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}
	if path != filepath.Join(dir, "RCP-000001.txt") {
		t.Fatalf("unexpected path %q", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read receipt: %v", err)
	}
	for _, want := range []string{
		"RECEIPT RCP-000001",
		"Issued:   2024-01-01 12:30:00 UTC",
		"Order:    ORD-20240101-ABCDEF12",
		"Customer: Ada",
		"#7  2 x 12.50 = 25.00",
		"Discount: 1.00",
		"Total:    26.50",
		"Paid by card: 26.50",
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("receipt misses %q:\n%s", want, content)
		}
	}
}

func TestRenderNeverOverwrites(t *testing.T) {
	r := NewFileRenderer(t.TempDir())
	if _, err := r.Render(context.Background(), sampleDocument()); err != nil {
		t.Fatalf("first render failed: %v", err)
	}
	if _, err := r.Render(context.Background(), sampleDocument()); err == nil {
		t.Fatal("expected second render of the same number to fail")
	}
}

func TestRenderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileRenderer(t.TempDir()).Render(ctx, sampleDocument()); err == nil {
		t.Fatal("expected cancelled context error")
	}
}

func TestRemove(t *testing.T) {
	r := NewFileRenderer(t.TempDir())
	path, err := r.Render(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if err := r.Remove(path); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be gone, got %v", err)
	}
	if err := r.Remove(path); err != nil {
		t.Fatalf("removing a missing file must succeed, got %v", err)
	}
}

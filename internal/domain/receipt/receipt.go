// Package receipt renders customer receipts after a committed sale.
// Rendering is best-effort: a failed receipt never fails the sale.
package receipt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tillage/internal/core/types"
)

// Line is one receipt row.
type Line struct {
	Name      string
	Quantity  types.Quantity
	UnitPrice types.Money
	Total     types.Money
	IsRefund  bool
}

// Data carries everything a renderer needs about a committed sale.
type Data struct {
	TransactionID string
	StoreName     string
	CashierName   string
	Timestamp     time.Time

	Lines []Line

	Subtotal       types.Money
	DiscountAmount types.Money
	Total          types.Money

	PaymentMethod  string
	AmountReceived *types.Money
	Change         *types.Money

	// RewardCode is printed when the sale earned the customer a voucher
	RewardCode string
}

// Renderer produces a receipt artifact and returns a reference to it.
type Renderer interface {
	Render(ctx context.Context, data *Data) (string, error)
}

const width = 40

// TextRenderer writes fixed-width plain text receipts to a directory.
type TextRenderer struct {
	dir       string
	storeName string
}

// NewTextRenderer creates a renderer writing into dir.
func NewTextRenderer(dir, storeName string) *TextRenderer {
	return &TextRenderer{dir: dir, storeName: storeName}
}

// Render writes the receipt file and returns its path.
func (r *TextRenderer) Render(ctx context.Context, data *Data) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}
	path := filepath.Join(r.dir, data.TransactionID+".txt")
	if err := os.WriteFile(path, []byte(r.build(data)), 0o644); err != nil {
		return "", fmt.Errorf("write receipt: %w", err)
	}
	return path, nil
}

func (r *TextRenderer) build(data *Data) string {
	var b strings.Builder

	store := data.StoreName
	if store == "" {
		store = r.storeName
	}

	rule := strings.Repeat("=", width)
	thin := strings.Repeat("-", width)

	center(&b, store)
	b.WriteString(rule + "\n")
	row(&b, "Receipt:", data.TransactionID)
	row(&b, "Date:", data.Timestamp.Format("2006-01-02 15:04:05"))
	if data.CashierName != "" {
		row(&b, "Cashier:", data.CashierName)
	}
	b.WriteString(thin + "\n")

	for _, l := range data.Lines {
		name := l.Name
		if l.IsRefund {
			name = "REFUND " + name
		}
		b.WriteString(name + "\n")
		qty := fmt.Sprintf("  %s x %s", trimQty(l.Quantity), l.UnitPrice.StringFixed(2))
		row(&b, qty, l.Total.StringFixed(2))
	}

	b.WriteString(thin + "\n")
	row(&b, "Subtotal:", data.Subtotal.StringFixed(2))
	if data.DiscountAmount.IsPositive() {
		row(&b, "Discount:", "-"+data.DiscountAmount.StringFixed(2))
	}
	row(&b, "TOTAL:", data.Total.StringFixed(2))
	b.WriteString(thin + "\n")

	row(&b, "Paid by:", data.PaymentMethod)
	if data.AmountReceived != nil {
		row(&b, "Received:", data.AmountReceived.StringFixed(2))
	}
	if data.Change != nil {
		row(&b, "Change:", data.Change.StringFixed(2))
	}

	if data.RewardCode != "" {
		b.WriteString(thin + "\n")
		center(&b, "You earned a reward!")
		center(&b, "Code: "+data.RewardCode)
	}

	b.WriteString(rule + "\n")
	center(&b, "Thank you for your purchase!")
	return b.String()
}

func center(b *strings.Builder, s string) {
	if len(s) >= width {
		b.WriteString(s + "\n")
		return
	}
	pad := (width - len(s)) / 2
	b.WriteString(strings.Repeat(" ", pad) + s + "\n")
}

func row(b *strings.Builder, left, right string) {
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right + "\n")
}

// trimQty renders whole quantities without fractional digits.
func trimQty(q types.Quantity) string {
	s := q.String()
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/polkiloo/retailpos/internal/usecase"
)

const layout = `RECEIPT {{ .Number }}
Issued:   {{ .IssuedAt.UTC.Format "2006-01-02 15:04:05" }} UTC
Order:    {{ .Order.Number }}
{{- with .Order.Customer.Name }}
Customer: {{ . }}
{{- end }}

{{ range .Order.Items -}}
#{{ .ProductID }}  {{ .Quantity }} x {{ .UnitPrice.StringFixed 2 }} = {{ .Subtotal.StringFixed 2 }}
{{ end }}
Subtotal: {{ .Order.Subtotal.StringFixed 2 }}
Tax:      {{ .Order.Tax.StringFixed 2 }}
Discount: {{ .Order.Discount.StringFixed 2 }}
Total:    {{ .Order.Total.StringFixed 2 }}

Paid by {{ .Payment.Method }}: {{ .Payment.Amount.StringFixed 2 }}
`

var receiptTemplate = template.Must(template.New("receipt").Parse(layout))

// FileRenderer writes plain text receipts into a directory.
type FileRenderer struct {
	dir string
}

// NewFileRenderer creates a renderer storing files under dir.
func NewFileRenderer(dir string) *FileRenderer {
	return &FileRenderer{dir: dir}
}

// Render writes the receipt and returns the file path. An existing file with
// the same number is never overwritten.
func (r *FileRenderer) Render(ctx context.Context, doc usecase.ReceiptDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create receipt dir: %w", err)
	}

	path := filepath.Join(r.dir, doc.Number+".txt")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}

	if err := receiptTemplate.Execute(f, doc); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("render receipt: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// Remove deletes a rendered receipt. Missing files are ignored.
func (r *FileRenderer) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

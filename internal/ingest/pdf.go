package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFText extracts plain text from the PDF at path, page by page,
// pages joined with a newline. Pages with no content stream are skipped.
//
// The context bounds the whole parse; malformed PDFs can otherwise take
// arbitrarily long.
func extractPDFText(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var sb strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("PDF parse canceled at page %d: %w", i, err)
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		sb.WriteString(text)
		if i < numPages {
			sb.WriteByte('\n')
		}
	}

	return sb.String(), nil
}

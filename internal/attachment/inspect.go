package attachment

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ledongthuc/pdf"
)

// Inspect returns the one-line chip text for f. PDFs that parse also report
// their page count; anything else falls back to name and size.
func Inspect(f File) string {
	parts := []string{f.Name, humanize.Bytes(uint64(f.Size()))}
	if isPDF(f) {
		if pages, err := PageCount(f); err == nil && pages > 0 {
			parts = append(parts, fmt.Sprintf("%d pages", pages))
		}
	}
	return strings.Join(parts, " · ")
}

// PageCount parses a PDF attachment and returns its number of pages.
func PageCount(f File) (pages int, err error) {
	defer func() {
		// the pdf reader panics on some truncated inputs
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("parse pdf %s: %v", f.Name, r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(f.Content), int64(len(f.Content)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf %s: %w", f.Name, err)
	}
	return reader.NumPage(), nil
}

func isPDF(f File) bool {
	if f.MediaType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(f.Name), ".pdf")
}

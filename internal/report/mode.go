package report

import (
	"fmt"
	"strings"
)

// Mode selects the report genre and with it the accepted attachment type and
// the export filename.
type Mode string

const (
	GeneralReport Mode = "general_report"
	BookReport    Mode = "book_report"
)

var (
	imageTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}
	bookTypes  = []string{".pdf", ".epub", ".txt"}
)

// ParseMode accepts the wire tags used by the backend.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.TrimSpace(value)) {
	case GeneralReport:
		return GeneralReport, nil
	case BookReport:
		return BookReport, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %s or %s)", value, GeneralReport, BookReport)
	}
}

func (m Mode) Valid() bool {
	return m == GeneralReport || m == BookReport
}

func (m Mode) String() string {
	return string(m)
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == BookReport {
		return GeneralReport
	}
	return BookReport
}

// AttachmentField is the multipart field name the backend reads the file from.
func (m Mode) AttachmentField() string {
	if m == BookReport {
		return "book_file"
	}
	return "image_file"
}

// AcceptedTypes is the advisory extension filter for the file picker.
func (m Mode) AcceptedTypes() []string {
	src := imageTypes
	if m == BookReport {
		src = bookTypes
	}
	return append([]string(nil), src...)
}

// AcceptHint is a short human description of AcceptedTypes.
func (m Mode) AcceptHint() string {
	if m == BookReport {
		return "one PDF, EPUB, or TXT file"
	}
	return "one image file"
}

func (m Mode) Filename() string {
	if m == BookReport {
		return "book-review.md"
	}
	return "report.md"
}

func (m Mode) Label() string {
	if m == BookReport {
		return "Book review"
	}
	return "Report"
}

package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Placeholder is what the report pane shows before anything was generated.
const Placeholder = "The report will appear here."

// ErrNothingToExport is returned by Export while download is disabled.
var ErrNothingToExport = errors.New("no report available to download")

// Document holds the current report text and the facts derived from it.
type Document struct {
	text      string
	charCount int
}

// SetContent replaces the report wholesale.
func (d *Document) SetContent(text string) {
	d.text = text
	d.charCount = utf8.RuneCountInString(text)
}

func (d *Document) Clear() {
	d.SetContent("")
}

func (d *Document) Text() string {
	return d.text
}

// CharCount is the length of the text in characters.
func (d *Document) CharCount() int {
	return d.charCount
}

func (d *Document) Empty() bool {
	return d.text == ""
}

// DownloadEnabled reports whether there is real report text to export.
func (d *Document) DownloadEnabled() bool {
	return d.text != "" && d.text != Placeholder
}

// Export writes the report verbatim into dir using the mode's filename and
// returns the written path.
func (d *Document) Export(dir string, mode Mode) (string, error) {
	if !d.DownloadEnabled() {
		return "", ErrNothingToExport
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, mode.Filename())
	if err := writeFileAtomic(path, []byte(d.text), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".reportdesk-export-*")
	if err != nil {
		return err
	}
	tmpPath := f.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(perm); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Remove(path)
	return os.Rename(tmpPath, path)
}

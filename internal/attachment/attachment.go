package attachment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is a pending upload held in memory until the next submission.
type File struct {
	Name      string
	Content   []byte
	MediaType string
}

// Size returns the content length in bytes.
func (f File) Size() int {
	return len(f.Content)
}

// Load reads path into a File. The media type is sniffed from the content;
// acceptability is left to the backend.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read attachment: %w", err)
	}
	return File{
		Name:      filepath.Base(path),
		Content:   data,
		MediaType: mimetype.Detect(data).String(),
	}, nil
}

// Slot holds at most one file.
type Slot struct {
	file *File
}

// Select replaces the held file with the first of files. Extra files are
// dropped; an empty call clears the slot.
func (s *Slot) Select(files ...File) {
	if len(files) == 0 {
		s.file = nil
		return
	}
	first := files[0]
	s.file = &first
}

func (s *Slot) Clear() {
	s.file = nil
}

func (s *Slot) Current() (File, bool) {
	if s.file == nil {
		return File{}, false
	}
	return *s.file, true
}

// MatchesHint reports whether name carries one of the hinted extensions. An
// empty hint matches everything.
func MatchesHint(name string, hint []string) bool {
	if len(hint) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range hint {
		if strings.ToLower(candidate) == ext {
			return true
		}
	}
	return false
}

package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	mode, err := ParseMode(" book_report ")
	require.NoError(t, err)
	assert.Equal(t, BookReport, mode)

	_, err = ParseMode("poetry")
	require.Error(t, err)
}

func TestModeFacts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "book_file", BookReport.AttachmentField())
	assert.Equal(t, "image_file", GeneralReport.AttachmentField())
	assert.Equal(t, "book-review.md", BookReport.Filename())
	assert.Equal(t, "report.md", GeneralReport.Filename())
	assert.Equal(t, BookReport, GeneralReport.Toggle())
	assert.Equal(t, GeneralReport, BookReport.Toggle())
	assert.Contains(t, BookReport.AcceptedTypes(), ".epub")
	assert.NotContains(t, GeneralReport.AcceptedTypes(), ".epub")
}

func TestDocumentLastWriteWins(t *testing.T) {
	t.Parallel()

	var doc Document
	doc.SetContent("first draft")
	doc.SetContent("## Q3 Summary")
	assert.Equal(t, "## Q3 Summary", doc.Text())
	assert.Equal(t, len("## Q3 Summary"), doc.CharCount())
}

func TestDocumentCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	var doc Document
	doc.SetContent("感想文")
	assert.Equal(t, 3, doc.CharCount())
}

func TestDownloadEnabled(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want bool
	}{
		{name: "empty", text: "", want: false},
		{name: "placeholder", text: Placeholder, want: false},
		{name: "content", text: "# Title", want: true},
		{name: "whitespace", text: " ", want: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var doc Document
			doc.SetContent(tc.text)
			assert.Equal(t, tc.want, doc.DownloadEnabled())
		})
	}
}

func TestExportWritesVerbatim(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var doc Document
	doc.SetContent("## Q3 Summary\n\n- revenue up\n")

	path, err := doc.Export(dir, BookReport)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "book-review.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Text(), string(data))

	doc.SetContent("second")
	_, err = doc.Export(dir, BookReport)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestExportRejectsEmptyReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var doc Document
	_, err := doc.Export(dir, GeneralReport)
	require.ErrorIs(t, err, ErrNothingToExport)

	doc.SetContent(Placeholder)
	_, err = doc.Export(dir, GeneralReport)
	require.ErrorIs(t, err, ErrNothingToExport)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProgressWording(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Preparing the report…", Progress(GeneralReport, false))
	assert.Equal(t, "Refining the book review…", Progress(BookReport, true))
	assert.NotEqual(t, Instruction(GeneralReport), Instruction(BookReport))
}

func TestOutcomeFollowsServerAction(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Report generated.", Outcome(GeneralReport, ActionGenerate))
	assert.Equal(t, "Book review generated.", Outcome(BookReport, ActionGenerate))
	assert.Equal(t, "Revisions applied. Review the updated content.", Outcome(BookReport, ActionRefine))
	assert.Equal(t, "Report generated.", Outcome(GeneralReport, "unknown"))
}

package report

import "fmt"

// Welcome is the first transcript line shown when a mode becomes active.
func Welcome(mode Mode) string {
	if mode == BookReport {
		return "Book review mode. Attach the book (PDF, EPUB, or TXT) and describe what the review should cover."
	}
	return "Report mode. Enter a theme or instructions, and attach an image if it helps."
}

// Instruction explains what a first submission needs when nothing was given.
func Instruction(mode Mode) string {
	if mode == BookReport {
		return "To write a book review, attach a book file and add any instructions you want."
	}
	return "Enter a prompt (question or instructions) or attach an image."
}

// Progress is the transient line shown while a request runs. refine selects
// the wording for editing an existing report.
func Progress(mode Mode, refine bool) string {
	noun := "report"
	if mode == BookReport {
		noun = "book review"
	}
	if refine {
		return fmt.Sprintf("Refining the %s…", noun)
	}
	return fmt.Sprintf("Preparing the %s…", noun)
}

// Action values the backend reports in action_type.
const (
	ActionGenerate = "generate"
	ActionRefine   = "refine"
)

// Outcome is the fallback success line when the server sent no message.
func Outcome(mode Mode, action string) string {
	if action == ActionRefine {
		return "Revisions applied. Review the updated content."
	}
	if mode == BookReport {
		return "Book review generated."
	}
	return "Report generated."
}

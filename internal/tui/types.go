package tui

type focusArea int

const (
	focusComposer focusArea = iota
	focusReport
	focusTranscript
)

var focusSequence = []focusArea{focusComposer, focusReport, focusTranscript}

const heroTagline = "Draft reports and book reviews with ReportDesk."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	pickerHeight              = 12
)

const (
	composerIdlePlaceholder = "Describe the report, or leave empty to send just the attachment…"
	composerBusyPlaceholder = "Waiting for the backend…"
)

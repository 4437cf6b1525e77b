package transcript

import "time"

// Sender tags who a transcript line belongs to.
type Sender string

const (
	User   Sender = "user"
	AI     Sender = "ai"
	System Sender = "system"
)

// Entry is one displayed message. Presentation prefixes are added at render
// time by Label and never stored here.
type Entry struct {
	ID        int
	Sender    Sender
	Text      string
	Transient bool
	At        time.Time
}

// Handle identifies a transient entry for its single removal.
type Handle struct {
	id int
}

// Transcript is the ordered list of displayed messages. Only transient
// entries can be removed.
type Transcript struct {
	entries []Entry
	nextID  int
	now     func() time.Time
}

func New() *Transcript {
	return &Transcript{now: time.Now}
}

// Append adds a permanent entry and returns its id.
func (t *Transcript) Append(sender Sender, text string) int {
	return t.add(sender, text, false)
}

// AppendTransient adds an in-progress entry that must later be removed.
func (t *Transcript) AppendTransient(sender Sender, text string) Handle {
	return Handle{id: t.add(sender, text, true)}
}

func (t *Transcript) add(sender Sender, text string, transient bool) int {
	t.nextID++
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	t.entries = append(t.entries, Entry{
		ID:        t.nextID,
		Sender:    sender,
		Text:      text,
		Transient: transient,
		At:        now(),
	})
	return t.nextID
}

// Remove deletes the transient entry behind h. It reports false when the
// entry is already gone.
func (t *Transcript) Remove(h Handle) bool {
	for i, entry := range t.entries {
		if entry.ID != h.id {
			continue
		}
		if !entry.Transient {
			return false
		}
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
		return true
	}
	return false
}

// Entries returns a copy in insertion order.
func (t *Transcript) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

// Reset drops every entry. Ids keep increasing so stale handles stay inert.
func (t *Transcript) Reset() {
	t.entries = nil
}

// Label is the display prefix for a sender.
func Label(sender Sender) string {
	switch sender {
	case User:
		return "You"
	case AI:
		return "AI"
	case System:
		return "System"
	default:
		return string(sender)
	}
}

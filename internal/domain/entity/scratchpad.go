package entity

import "strings"

type ScratchpadEntry struct {
	Thought     string `json:"thought,omitempty"`
	Action      string `json:"action,omitempty"`
	ActionInput string `json:"actionInput,omitempty"`
	Observation string `json:"observation,omitempty"`
}

// Format renders the entry as it follows a "Thought:" prompt tail and leaves the
// transcript open for the next thought.
func (e ScratchpadEntry) Format() string {
	var b strings.Builder
	if e.Thought != "" {
		b.WriteString(" ")
		b.WriteString(e.Thought)
	}
	b.WriteString("\n")
	if e.Action != "" {
		b.WriteString("Action: ")
		b.WriteString(e.Action)
		b.WriteString("\nAction Input: ")
		b.WriteString(e.ActionInput)
		b.WriteString("\n")
	}
	if e.Observation != "" {
		b.WriteString("Observation: ")
		b.WriteString(e.Observation)
		b.WriteString("\n")
	}
	b.WriteString("Thought:")
	return b.String()
}

// Scratchpad is append-only; entries are never changed once added.
type Scratchpad struct {
	entries []ScratchpadEntry
}

func NewScratchpad() *Scratchpad {
	return &Scratchpad{}
}

func (s *Scratchpad) Append(entry ScratchpadEntry) {
	s.entries = append(s.entries, entry)
}

func (s *Scratchpad) Len() int {
	return len(s.entries)
}

func (s *Scratchpad) Entries() []ScratchpadEntry {
	out := make([]ScratchpadEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Scratchpad) String() string {
	var b strings.Builder
	for _, e := range s.entries {
		b.WriteString(e.Format())
	}
	return b.String()
}

package prompt

import "strings"

// Section is one named block of extra context appended after the reference
// material. The ID exists for replacement and removal; it is not rendered.
type Section struct {
	ID          string
	Description string
	Content     string
}

// Assembler builds a system prompt from an instruction preamble, the
// rendered reference material, and ordered context sections.
type Assembler struct {
	instructions string
	blob         string
	sections     []Section
}

// NewAssembler creates an assembler over the instruction preamble and the
// rendered reference blob.
func NewAssembler(instructions, blob string) *Assembler {
	return &Assembler{
		instructions: instructions,
		blob:         blob,
	}
}

// AddSection appends a section, or replaces the existing one with the same
// ID in place, preserving section order.
func (a *Assembler) AddSection(s Section) {
	for i := range a.sections {
		if a.sections[i].ID == s.ID {
			a.sections[i] = s
			return
		}
	}
	a.sections = append(a.sections, s)
}

// RemoveSection removes the section with the given ID and reports whether
// one was present.
func (a *Assembler) RemoveSection(id string) bool {
	for i := range a.sections {
		if a.sections[i].ID == id {
			a.sections = append(a.sections[:i], a.sections[i+1:]...)
			return true
		}
	}
	return false
}

// Sections returns a copy of the current sections in order.
func (a *Assembler) Sections() []Section {
	return append([]Section(nil), a.sections...)
}

// Build concatenates instructions, reference blob, and sections into the
// final prompt. A section's description, when present, precedes its content.
func (a *Assembler) Build() string {
	var b strings.Builder

	b.WriteString(a.instructions)
	b.WriteString(a.blob)

	for _, s := range a.sections {
		b.WriteString("\n\n")
		if s.Description != "" {
			b.WriteString(s.Description)
			b.WriteString("\n\n")
		}
		b.WriteString(s.Content)
	}

	return b.String()
}

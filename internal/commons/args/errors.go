package args

import "strings"

// Base is the attribute for record-level errors. Its messages are reported
// verbatim, without a label.
const Base = "base"

type entry struct {
	attribute string
	label     string
	message   string
}

// Errors is an ordered collection of attribute error messages.
type Errors struct {
	entries []entry
	label   func(attribute string) string
}

func NewErrors() *Errors {
	return &Errors{}
}

// Add appends message for attribute.
func (e *Errors) Add(attribute, message string) {
	attribute = strings.TrimSpace(attribute)
	if attribute == "" {
		attribute = Base
	}
	e.add(attribute, e.labelFor(attribute), message)
}

func (e *Errors) add(attribute, label, message string) {
	e.entries = append(e.entries, entry{attribute: attribute, label: label, message: strings.TrimSpace(message)})
}

func (e *Errors) labelFor(attribute string) string {
	if e.label != nil {
		return e.label(attribute)
	}
	return Humanize(attribute)
}

// On returns the messages recorded for attribute.
func (e *Errors) On(attribute string) []string {
	if e == nil {
		return nil
	}
	var out []string
	for _, en := range e.entries {
		if en.attribute == attribute {
			out = append(out, en.message)
		}
	}
	return out
}

// Attributes returns every attribute with at least one error, in first-error order.
func (e *Errors) Attributes() []string {
	if e == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, en := range e.entries {
		if !seen[en.attribute] {
			seen[en.attribute] = true
			out = append(out, en.attribute)
		}
	}
	return out
}

// FullMessages renders "Label message" per entry.
func (e *Errors) FullMessages() []string {
	if e == nil {
		return []string{}
	}
	out := make([]string, 0, len(e.entries))
	for _, en := range e.entries {
		if en.attribute == Base || en.label == "" {
			out = append(out, en.message)
			continue
		}
		out = append(out, en.label+" "+en.message)
	}
	return out
}

// Merge appends every entry of other.
func (e *Errors) Merge(other *Errors) {
	if other == nil {
		return
	}
	e.entries = append(e.entries, other.entries...)
}

func (e *Errors) Empty() bool { return e == nil || len(e.entries) == 0 }

func (e *Errors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.entries)
}

func (e *Errors) Clear() { e.entries = nil }

package twiconset

import "fmt"

// Source describes where an icon set comes from: a loaded icon set, a string
// (inline JSON, file name or icon set prefix) or a function that returns
// an icon set.  The zero value is an empty string source.
type Source struct {
	set  *IconSet
	text string
	fn   func() *IconSet
}

// FromIconSet returns a Source for an icon set that is already loaded.
func FromIconSet(s *IconSet) Source { return Source{set: s} }

// FromString returns a Source for inline JSON, a file name or a prefix.
func FromString(s string) Source { return Source{text: s} }

// FromFunc returns a Source which calls fn on every load.
func FromFunc(fn func() *IconSet) Source { return Source{fn: fn} }

// String returns the string for string sources, or a description otherwise.
func (s Source) String() string {
	switch {
	case s.fn != nil:
		return "func() *IconSet"
	case s.set != nil:
		return fmt.Sprintf("IconSet(%s)", s.set.Prefix)
	}
	return s.text
}

// Text returns the string for string sources.
func (s Source) Text() (string, bool) {
	if s.fn != nil || s.set != nil {
		return "", false
	}
	return s.text, true
}

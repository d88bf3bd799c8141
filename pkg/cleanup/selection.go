package cleanup

import (
	"slices"
	"strings"
)

// Selection is an ordered, duplicate-free multi-select over a fixed catalog.
// When the catalog contains an "other" sentinel, the user may type a
// free-text entry that takes the sentinel's place in Keys.
type Selection struct {
	catalog   []string
	other     string
	selected  []string
	otherText string
}

// NewSelection creates an empty selection over catalog. other names the
// sentinel entry; pass "" when the catalog has none.
func NewSelection(catalog []string, other string) *Selection {
	c := slices.Clone(catalog)
	if other != "" && !slices.Contains(c, other) {
		c = append(c, other)
	}
	return &Selection{catalog: c, other: other}
}

// Set replaces the selection. Values outside the catalog and duplicates are
// discarded; order of first appearance is kept. Deselecting the sentinel
// clears the free text.
func (s *Selection) Set(values []string) {
	next := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(s.catalog, v) || slices.Contains(next, v) {
			continue
		}
		next = append(next, v)
	}
	s.selected = next
	if !s.OtherSelected() {
		s.otherText = ""
	}
}

// SetOtherText records the free-text entry. It is kept verbatim; Keys trims it.
func (s *Selection) SetOtherText(text string) {
	s.otherText = text
}

// OtherText returns the free-text entry as typed.
func (s *Selection) OtherText() string { return s.otherText }

// OtherSelected reports whether the sentinel is selected.
func (s *Selection) OtherSelected() bool {
	return s.other != "" && slices.Contains(s.selected, s.other)
}

// Selected returns the raw selection, sentinel included.
func (s *Selection) Selected() []string { return slices.Clone(s.selected) }

// Has reports whether v is in the raw selection.
func (s *Selection) Has(v string) bool { return slices.Contains(s.selected, v) }

// Keys returns the effective keys: the selection without the sentinel, plus
// the trimmed free text when the sentinel is selected and the text is
// non-empty. A free text equal to a selected catalog key adds nothing.
func (s *Selection) Keys() []string {
	keys := make([]string, 0, len(s.selected)+1)
	for _, v := range s.selected {
		if v != s.other {
			keys = append(keys, v)
		}
	}
	if s.OtherSelected() {
		if t := strings.TrimSpace(s.otherText); t != "" && !slices.Contains(keys, t) {
			keys = append(keys, t)
		}
	}
	return keys
}

// Clear empties the selection and the free text.
func (s *Selection) Clear() {
	s.selected = nil
	s.otherText = ""
}

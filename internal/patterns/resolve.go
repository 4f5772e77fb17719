package patterns

import (
	"fmt"
	"strings"
)

// AllSelector is the selector value that, in any letter case, means every pattern.
const AllSelector = "All"

// UnknownPatternError reports a selector that names no pattern in the set.
// Suggestions lists pattern names containing the selector.
type UnknownPatternError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("invalid selector: %q", e.Name)
}

// IndexOutOfRangeError reports an index selector outside [0, Count).
type IndexOutOfRangeError struct {
	Index int
	Count int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("invalid selector index %d, out of range (0-%d)", e.Index, e.Count-1)
}

// Query identifies the pattern(s) a run targets. Index wins over Name; with
// neither set every pattern is selected.
type Query struct {
	Name  string
	Index *int
}

// Selection is a resolved Query.
type Selection struct {
	// Name is the selected pattern, empty when every pattern is selected.
	Name string
	Set  *Set
}

// All reports whether the selection covers the whole set.
func (sel Selection) All() bool { return sel.Name == "" }

// Label returns the selected pattern name, or AllSelector.
func (sel Selection) Label() string {
	if sel.All() {
		return AllSelector
	}
	return sel.Name
}

// Resolve narrows s to the patterns q selects.
func (s *Set) Resolve(q Query) (Selection, error) {
	if q.Index != nil {
		i := *q.Index
		if i < 0 || i >= s.Len() {
			return Selection{}, &IndexOutOfRangeError{Index: i, Count: s.Len()}
		}
		name := s.names[i]
		return Selection{Name: name, Set: s.only(name)}, nil
	}

	if q.Name == "" || strings.EqualFold(q.Name, AllSelector) {
		return Selection{Set: s}, nil
	}

	if _, ok := s.sources[q.Name]; !ok {
		return Selection{}, &UnknownPatternError{Name: q.Name, Suggestions: s.Suggest(q.Name)}
	}
	return Selection{Name: q.Name, Set: s.only(q.Name)}, nil
}

// Suggest returns the names that contain fragment, in declaration order.
func (s *Set) Suggest(fragment string) []string {
	var matches []string
	for _, name := range s.names {
		if strings.Contains(name, fragment) {
			matches = append(matches, name)
		}
	}
	return matches
}

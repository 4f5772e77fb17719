// Package patterns holds ordered sets of named regular expressions and
// resolves which of them a generation run targets.
package patterns

import "fmt"

// Pattern is a named regular expression used as a generative template.
type Pattern struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// Set is an immutable, ordered mapping from pattern name to source.
type Set struct {
	names   []string
	sources map[string]string
}

// New builds a Set in the given order. Names must be unique.
func New(patterns ...Pattern) (*Set, error) {
	s := &Set{sources: make(map[string]string, len(patterns))}
	for _, p := range patterns {
		if _, dup := s.sources[p.Name]; dup {
			return nil, fmt.Errorf("duplicate pattern name %q", p.Name)
		}
		s.names = append(s.names, p.Name)
		s.sources[p.Name] = p.Source
	}
	return s, nil
}

// Len returns the number of patterns.
func (s *Set) Len() int { return len(s.names) }

// Names returns the pattern names in declaration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Source returns the source of the named pattern.
func (s *Set) Source(name string) (string, bool) {
	src, ok := s.sources[name]
	return src, ok
}

// At returns the i-th pattern in declaration order.
func (s *Set) At(i int) Pattern {
	name := s.names[i]
	return Pattern{Name: name, Source: s.sources[name]}
}

// Patterns returns every pattern in declaration order.
func (s *Set) Patterns() []Pattern {
	out := make([]Pattern, len(s.names))
	for i := range s.names {
		out[i] = s.At(i)
	}
	return out
}

func (s *Set) only(name string) *Set {
	return &Set{
		names:   []string{name},
		sources: map[string]string{name: s.sources[name]},
	}
}

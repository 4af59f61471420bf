package param

import (
	"iter"
	"slices"

	"github.com/advdv/bmsg/mediatype"
)

// Set is an ordered collection of views keyed by name.
type Set struct {
	names []string
	views map[string]*View
}

// NewSet returns a set of the views in the given order. Later views with a
// duplicate name are ignored.
func NewSet(views ...*View) *Set {
	s := &Set{views: make(map[string]*View, len(views))}

	for _, v := range views {
		if _, dup := s.views[v.Name()]; dup {
			continue
		}

		s.names = append(s.names, v.Name())
		s.views[v.Name()] = v
	}

	return s
}

// Len returns the number of views.
func (s *Set) Len() int { return len(s.names) }

// Names returns the names in order.
func (s *Set) Names() []string { return slices.Clone(s.names) }

// Lookup returns the view with the given name.
func (s *Set) Lookup(name string) (*View, bool) {
	v, ok := s.views[name]
	return v, ok
}

// Get returns the view with the given name, or an empty view when absent.
func (s *Set) Get(name string) *View {
	if v, ok := s.views[name]; ok {
		return v
	}

	return NewView(name, nil, mediatype.All, nil)
}

// All iterates the views in order.
func (s *Set) All() iter.Seq2[string, *View] {
	return func(yield func(string, *View) bool) {
		for _, name := range s.names {
			if !yield(name, s.views[name]) {
				return
			}
		}
	}
}

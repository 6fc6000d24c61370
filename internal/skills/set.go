package skills

import (
	"encoding/json"
	"sort"
)

// Set is an unordered collection of canonical skill names.
type Set map[string]struct{}

// NewSet builds a set from the provided names. Names are used as-is; callers
// canonicalize before building sets that take part in comparisons.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		s[name] = struct{}{}
	}
	return s
}

// CanonicalSet normalizes every name before inserting it.
func CanonicalSet(names ...string) Set {
	return NewSet(NormalizeAll(names)...)
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) Len() int { return len(s) }

// With returns a copy of s that also contains name.
func (s Set) With(name string) Set {
	out := s.Clone()
	out[name] = struct{}{}
	return out
}

// Without returns a copy of s that does not contain name.
func (s Set) Without(name string) Set {
	out := s.Clone()
	delete(out, name)
	return out
}

func (s Set) Clone() Set {
	out := make(Set, len(s)+1)
	for name := range s {
		out[name] = struct{}{}
	}
	return out
}

// Intersect returns the names present in both sets.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for name := range s {
		if other.Has(name) {
			out[name] = struct{}{}
		}
	}
	return out
}

// Difference returns the names of s that are absent from other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for name := range s {
		if !other.Has(name) {
			out[name] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSet(names...)
	return nil
}

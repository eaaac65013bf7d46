package rewrite

import "sort"

// Scope is a table of name bindings. Setting a name that is already bound
// replaces its value. A Scope is not safe to use concurrently.
type Scope struct {
	names map[Name]Symbol
}

// NewScope creates a scope with the given bindings.
func NewScope(vars map[Name]Symbol) *Scope {
	s := Scope{names: make(map[Name]Symbol, len(vars))}
	for k, v := range vars {
		s.names[k] = v
	}
	return &s
}

// Set binds a name. Returns s for chaining.
func (s *Scope) Set(name Name, value Symbol) *Scope {
	if s.names == nil {
		s.names = make(map[Name]Symbol)
	}
	s.names[name] = value
	return s
}

// Lookup returns the value bound to a name. If the name is free, the result
// is nil.
func (s *Scope) Lookup(name Name) Symbol {
	return s.names[name]
}

// Resolve returns the value bound to name, or name itself if it is free.
func (s *Scope) Resolve(name Name) Symbol {
	if v, ok := s.names[name]; ok {
		return v
	}
	return name
}

// Names returns the bound names in sorted order.
func (s *Scope) Names() []Name {
	r := make([]Name, 0, len(s.names))
	for k := range s.names {
		r = append(r, k)
	}
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return r
}

// Len returns the number of bound names.
func (s *Scope) Len() int {
	return len(s.names)
}

// Clone creates a copy of a scope. Symbols are immutable, so the bindings
// are shared.
func (s *Scope) Clone() *Scope {
	return NewScope(s.names)
}

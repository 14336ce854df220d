package runtime

import (
	"pcg/internal/domain"
	"pcg/internal/value"
)

// GlobalScope names the bottom scope of every stack
const GlobalScope = "global"

// Scope is one frame of named values
type Scope struct {
	name string
	vars map[string]value.Value
}

func (s *Scope) Name() string { return s.name }

// ScopeStack is the lexical environment of an activation chain. The global
// scope is always present.
type ScopeStack struct {
	scopes []*Scope
}

func NewScopeStack() *ScopeStack {
	return &ScopeStack{scopes: []*Scope{newScope(GlobalScope)}}
}

func newScope(name string) *Scope {
	return &Scope{name: name, vars: make(map[string]value.Value)}
}

// Depth counts the scopes, global included
func (s *ScopeStack) Depth() int { return len(s.scopes) }

// Push opens a new innermost scope
func (s *ScopeStack) Push(name string) *Scope {
	sc := newScope(name)
	s.scopes = append(s.scopes, sc)
	return sc
}

// Pop removes the innermost scope. The global scope cannot be popped.
func (s *ScopeStack) Pop() error {
	if len(s.scopes) == 1 {
		return domain.StructuralError("pop scope", "cannot pop the global scope")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
	return nil
}

// Current returns the innermost scope
func (s *ScopeStack) Current() *Scope { return s.scopes[len(s.scopes)-1] }

// Lookup searches from the innermost scope outwards
func (s *ScopeStack) Lookup(name string) (value.Value, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return value.Undefined(), false
}

// Define binds name in the innermost scope
func (s *ScopeStack) Define(name string, v value.Value) {
	s.Current().vars[name] = v
}

// DefineGlobal binds name in the global scope
func (s *ScopeStack) DefineGlobal(name string, v value.Value) {
	s.scopes[0].vars[name] = v
}

// Assign updates the nearest scope that already binds name, or defines it
// in the innermost one.
func (s *ScopeStack) Assign(name string, v value.Value) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if _, ok := s.scopes[i].vars[name]; ok {
			s.scopes[i].vars[name] = v
			return
		}
	}
	s.Define(name, v)
}

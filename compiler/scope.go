package compiler

import (
	"github.com/arc-language/core-builder/ir"
)

// Slot is a local storage location: an address plus the value category
// that decides how every reference to it is loaded.
type Slot struct {
	Name     string
	Addr     ir.Value
	Category Category
}

// Scope represents a lexical scope of storage slots
type Scope struct {
	parent *Scope
	slots  map[string]*Slot
}

// NewScope creates a new scope
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		slots:  make(map[string]*Slot),
	}
}

// Parent returns the enclosing scope, nil for the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Declare adds a slot to this scope, replacing any slot of the same name
// declared here earlier.
func (s *Scope) Declare(name string, addr ir.Value, category Category) *Slot {
	slot := &Slot{
		Name:     name,
		Addr:     addr,
		Category: category,
	}
	s.slots[name] = slot
	return slot
}

// LookupSlot searches for a slot in the current scope and parent scopes
func (s *Scope) LookupSlot(name string) (*Slot, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if slot, ok := cur.slots[name]; ok {
			return slot, true
		}
	}
	return nil, false
}

// LookupLocal searches only the current scope (not parents)
func (s *Scope) LookupLocal(name string) (*Slot, bool) {
	slot, ok := s.slots[name]
	return slot, ok
}

// Depth is the number of parents above s.
func (s *Scope) Depth() int {
	d := 0
	for cur := s.parent; cur != nil; cur = cur.parent {
		d++
	}
	return d
}

// Package env provides the lexical environment used to track
// interpreter-level bindings while a compilation unit is lowered.
//
// Frames live in an Arena owned by the compilation unit. A frame refers to
// its parent by index, so a chain can be walked without any frame holding a
// pointer into another.
package env

import (
	"fmt"
	"sort"
)

// Frame identifies one scope frame inside an Arena.
type Frame int

// NoParent is the parent index of a root frame.
const NoParent Frame = -1

type frame[V any] struct {
	parent Frame
	vars   map[string]V
}

// Arena owns every frame created for one compilation unit.
type Arena[V any] struct {
	frames []frame[V]
}

// NewArena creates an empty arena
func NewArena[V any]() *Arena[V] {
	return &Arena[V]{
		frames: make([]frame[V], 0, 8),
	}
}

// Root creates a frame with no bindings and no parent.
func (a *Arena[V]) Root() Frame {
	return a.push(NoParent)
}

// Extend creates an empty frame whose parent is parent.
func (a *Arena[V]) Extend(parent Frame) Frame {
	a.check(parent)
	return a.push(parent)
}

func (a *Arena[V]) push(parent Frame) Frame {
	a.frames = append(a.frames, frame[V]{
		parent: parent,
		vars:   make(map[string]V),
	})
	return Frame(len(a.frames) - 1)
}

// Lookup searches f and then its ancestors for name. The nearest binding
// wins. A miss returns the zero value and false.
func (a *Arena[V]) Lookup(f Frame, name string) (V, bool) {
	a.check(f)
	for cur := f; cur != NoParent; cur = a.frames[cur].parent {
		if val, ok := a.frames[cur].vars[name]; ok {
			return val, true
		}
	}
	var zero V
	return zero, false
}

// LookupLocal searches only f's own bindings
func (a *Arena[V]) LookupLocal(f Frame, name string) (V, bool) {
	a.check(f)
	val, ok := a.frames[f].vars[name]
	return val, ok
}

// Bind inserts or overwrites name in f only.
func (a *Arena[V]) Bind(f Frame, name string, val V) {
	a.check(f)
	a.frames[f].vars[name] = val
}

// Merge copies every binding of other into f, overwriting on collision.
// Neither frame's parent changes.
func (a *Arena[V]) Merge(f, other Frame) {
	a.check(f)
	a.check(other)
	dst := a.frames[f].vars
	for name, val := range a.frames[other].vars {
		dst[name] = val
	}
}

// Clear removes f's own bindings. Its parent is unchanged.
func (a *Arena[V]) Clear(f Frame) {
	a.check(f)
	clear(a.frames[f].vars)
}

// Parent returns the parent of f, or false for a root frame.
func (a *Arena[V]) Parent(f Frame) (Frame, bool) {
	a.check(f)
	p := a.frames[f].parent
	return p, p != NoParent
}

// Names returns f's own bound names in sorted order.
func (a *Arena[V]) Names(f Frame) []string {
	a.check(f)
	names := make([]string, 0, len(a.frames[f].vars))
	for name := range a.frames[f].vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of frames issued by the arena.
func (a *Arena[V]) Len() int {
	return len(a.frames)
}

func (a *Arena[V]) check(f Frame) {
	if f < 0 || int(f) >= len(a.frames) {
		panic(fmt.Sprintf("env: frame %d was not issued by this arena", f))
	}
}

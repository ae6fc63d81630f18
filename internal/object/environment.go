package object

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is one tier of the scope chain. Lookup walks innermost
// first; assignment rebinds where the name already lives, or creates the
// binding in the nearest enclosing instance scope.
type Environment struct {
	ID       uint64
	Bindings map[string]Object
	Outer    *Environment

	// IsInstanceScope marks the mutable field tier owned by an agent
	// instance; unbound assignments land here.
	IsInstanceScope bool

	mu sync.RWMutex
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextID.Add(1),
		Bindings: make(map[string]Object),
	}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	return env
}

// NewInstanceEnvironment creates an agent instance's field scope.
func NewInstanceEnvironment(outer *Environment) *Environment {
	env := NewEnclosedEnvironment(outer)
	env.IsInstanceScope = true
	return env
}

func (e *Environment) Get(name string) (Object, bool) {
	e.mu.RLock()
	val, ok := e.Bindings[name]
	e.mu.RUnlock()
	if ok {
		return val, true
	}
	if e.Outer != nil {
		return e.Outer.Get(name)
	}
	return nil, false
}

// GetLocal returns a binding from this tier only.
func (e *Environment) GetLocal(name string) (Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	val, ok := e.Bindings[name]
	return val, ok
}

// Define binds name in this tier, shadowing any outer binding.
func (e *Environment) Define(name string, val Object) Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Bindings[name] = val
	return val
}

// Assign implements binding-message semantics: if the name is bound in any
// tier, the existing binding is replaced in place; otherwise it is created
// in the nearest enclosing instance scope, falling back to the current
// tier when no instance scope exists (module top level).
func (e *Environment) Assign(name string, val Object) (Object, error) {
	for scope := e; scope != nil; scope = scope.Outer {
		scope.mu.Lock()
		if _, ok := scope.Bindings[name]; ok {
			scope.Bindings[name] = val
			scope.mu.Unlock()
			return val, nil
		}
		scope.mu.Unlock()
	}

	for scope := e; scope != nil; scope = scope.Outer {
		if scope.IsInstanceScope {
			return scope.Define(name, val), nil
		}
	}

	return e.Define(name, val), nil
}

// Names returns the locally bound names, for diagnostics and spawn
// override collection.
func (e *Environment) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.Bindings))
	for name := range e.Bindings {
		names = append(names, name)
	}
	return names
}

func (e *Environment) String() string {
	return fmt.Sprintf("<env %d (%d bindings)>", e.ID, len(e.Bindings))
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"sort"
	"sync"
)

// Factory creates a new Engine instance. Factories are invoked once per
// session; each returned engine is independently owned and closed.
type Factory func() (Engine, error)

// Entry describes a registered engine.
type Entry struct {
	// Name is the unique identifier for this engine.
	Name string

	// Priority determines auto-selection order (higher = preferred).
	// Standard priorities:
	//   - 100: GPU engines (wgpu)
	//   - 10: pure software engines (soft)
	Priority int

	// Factory creates engine instances.
	Factory Factory

	// Available reports whether the engine can run on this system.
	Available func() bool
}

// registry holds registered engines keyed by name.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

var global = &registry{}

// Register adds an engine to the registry. A nil available function means
// always available. Registering an existing name replaces the entry.
//
// Engines register themselves from init:
//
//	func init() {
//	    engine.Register("soft", 10, factory, nil)
//	}
func Register(name string, priority int, factory Factory, available func() bool) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.entries == nil {
		global.entries = make(map[string]*Entry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	global.entries[name] = &Entry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes an engine from the registry.
func Unregister(name string) {
	global.mu.Lock()
	defer global.mu.Unlock()
	delete(global.entries, name)
}

// List returns all registered engine names sorted by priority
// (highest first).
func List() []string {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.sortedNames(false)
}

// Available returns the names of engines usable on this system, sorted
// by priority (highest first).
func Available() []string {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.sortedNames(true)
}

// Get returns a copy of the registry entry for name.
func Get(name string) (Entry, bool) {
	global.mu.RLock()
	defer global.mu.RUnlock()

	e, ok := global.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// New creates an engine using the best available entry, trying
// candidates in priority order until one constructs successfully.
func New() (Engine, error) {
	global.mu.RLock()
	names := global.sortedNames(true)
	global.mu.RUnlock()

	if len(names) == 0 {
		return nil, ErrNoEngine
	}

	var lastErr error
	for _, name := range names {
		e, err := NewByName(name)
		if err == nil {
			return e, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// NewByName creates an engine using a specific registered entry.
func NewByName(name string) (Engine, error) {
	global.mu.RLock()
	entry, ok := global.entries[name]
	global.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &UnavailableError{Name: name}
	}
	return entry.Factory()
}

// sortedNames returns engine names sorted by priority (highest first).
// Must be called with the registry lock held.
func (r *registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	type cand struct {
		name     string
		priority int
	}
	cands := make([]cand, 0, len(r.entries))
	for name, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		cands = append(cands, cand{name: name, priority: e.Priority})
	}
	sort.Slice(cands, func(i, j int) bool {
		return cands[i].priority > cands[j].priority
	})

	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = c.name
	}
	return names
}

// Errors.
var (
	// ErrNoEngine is returned when no engines are registered or
	// available on the current system.
	ErrNoEngine = errors.New("engine: no engine available")

	// ErrUnknownHandle is wrapped by engines when a handle does not
	// refer to a live buffer.
	ErrUnknownHandle = errors.New("engine: unknown buffer handle")
)

// NotFoundError indicates a named engine is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "engine: not registered: " + e.Name
}

// UnavailableError indicates an engine exists but cannot run here.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return "engine: unavailable: " + e.Name
}

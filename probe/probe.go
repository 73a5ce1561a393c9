package probe

import (
	"maps"
	"os"
	"sync"
)

// Env is an ambient variable store.
type Env interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
}

// Capability is a host runtime as seen by the registry.
//
// A constrained runtime exposes a release version tag and usually no ambient
// variables. A general runtime exposes a process environment.
type Capability interface {
	Env
	IsConstrained() bool
	IsGeneral() bool
	VersionTag() string
}

// Process is the general runtime backed by the operating system environment.
type Process struct{}

func (Process) IsConstrained() bool { return false }
func (Process) IsGeneral() bool     { return true }
func (Process) VersionTag() string  { return "" }

func (Process) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (Process) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

// MiniProgram is a constrained runtime identified by its version tag
// (develop, trial or release). It has no ambient variables.
type MiniProgram struct {
	Version string
}

func (MiniProgram) IsConstrained() bool  { return true }
func (MiniProgram) IsGeneral() bool      { return false }
func (m MiniProgram) VersionTag() string { return m.Version }

func (MiniProgram) LookupEnv(string) (string, bool) {
	return "", false
}

func (MiniProgram) Setenv(string, string) error {
	return nil
}

// None is used when no known runtime is available.
type None struct{}

func (None) IsConstrained() bool             { return false }
func (None) IsGeneral() bool                 { return false }
func (None) VersionTag() string              { return "" }
func (None) LookupEnv(string) (string, bool) { return "", false }
func (None) Setenv(string, string) error     { return nil }

// Map is a general runtime backed by an in-memory variable map. It keeps
// registries isolated from the real process environment.
type Map struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewMap returns a Map seeded with a copy of vars.
func NewMap(vars map[string]string) *Map {
	m := &Map{vars: make(map[string]string, len(vars))}
	maps.Copy(m.vars, vars)
	return m
}

func (m *Map) IsConstrained() bool { return false }
func (m *Map) IsGeneral() bool     { return true }
func (m *Map) VersionTag() string  { return "" }

func (m *Map) LookupEnv(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vars[key]
	return v, ok
}

func (m *Map) Setenv(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vars == nil {
		m.vars = make(map[string]string)
	}
	m.vars[key] = value
	return nil
}

// Vars returns a copy of the current variables.
func (m *Map) Vars() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.vars)
}

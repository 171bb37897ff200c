// Package output renders probe results in the CLI's output formats
// (table, plain, json, yaml, tsv, csv).
//
// The package uses a registry so formatters can be selected by name:
//
//	formatter, err := output.Get("json")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, report); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/mounts"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/platform"
)

// Attempt is one failed binding candidate.
type Attempt struct {
	Image string `json:"image" yaml:"image"`
	Error string `json:"error" yaml:"error"`
}

// Binding describes the outcome of resolving a native capability.
type Binding struct {
	Capability string    `json:"capability" yaml:"capability"`
	Bound      bool      `json:"bound" yaml:"bound"`
	Image      string    `json:"image,omitempty" yaml:"image,omitempty"`
	Flags      int       `json:"flags" yaml:"flags"`
	FlagNames  string    `json:"flag_names" yaml:"flag_names"`
	Symbols    []string  `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Attempts   []Attempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// Report holds whatever a command produced. Nil or empty sections are
// omitted from the output.
type Report struct {
	Platforms []platform.Descriptor `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	Mounts    []mounts.Record       `json:"mounts,omitempty" yaml:"mounts,omitempty"`
	MountMap  mounts.MountMap       `json:"mount_map,omitempty" yaml:"mount_map,omitempty"`
	Added     mounts.MountMap       `json:"added,omitempty" yaml:"added,omitempty"`
	Removed   mounts.MountMap       `json:"removed,omitempty" yaml:"removed,omitempty"`
	Binding   *Binding              `json:"binding,omitempty" yaml:"binding,omitempty"`
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	Format(w *bytes.Buffer, r *Report) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// sortedDevices returns the map's keys in sorted order.
func sortedDevices(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

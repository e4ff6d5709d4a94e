// Package module defines the static module descriptor (spec.md §3) — the
// link-time registration record every module contributes. It deliberately
// has no dependency on the runtime packages (clienthub, openapi, the HTTP
// router): a descriptor's constructor just returns an Instance, and
// internal/registry later type-asserts that Instance against the
// capability-specific interfaces it actually implements (Initializer,
// Migrator, RESTRegistrar, Runnable — see internal/registry/instance.go).
package module

import "fmt"

// Instance is the opaque value a Descriptor's constructor produces. The
// registry recovers behavior from it via capability-specific interface
// assertions, never via this type itself.
type Instance any

// Descriptor is the static, immutable registration record for one module,
// analogous to one entry the teacher's di.Wire would hand-assemble, but
// data-driven instead of hardcoded: name, dependency names, capability set,
// and a constructor.
type Descriptor struct {
	// Name uniquely identifies the module across the process.
	Name string
	// Dependencies lists the names of modules that must be initialized
	// first. The pseudo-name "db" refers to the external database
	// collaborator, not another module, and is always considered satisfied.
	Dependencies []string
	// Capabilities is the set of roles this module fulfils.
	Capabilities Set
	// New constructs one instance of the module. Called exactly once, at
	// discovery time, before Init.
	New func() (Instance, error)
	// ClientInterface optionally names the clienthub.InterfaceID this module
	// publishes, for documentation/diagnostics only — the registry does not
	// enforce it.
	ClientInterface string
}

// Validate checks field-level invariants that do not require the rest of
// the registered set (uniqueness and dependency resolution are checked by
// the registry once all descriptors are known).
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("module descriptor: name must not be empty")
	}
	if d.New == nil {
		return fmt.Errorf("module descriptor %q: constructor must not be nil", d.Name)
	}
	for _, dep := range d.Dependencies {
		if dep == "" {
			return fmt.Errorf("module descriptor %q: empty dependency name", d.Name)
		}
	}
	return nil
}

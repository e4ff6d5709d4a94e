package registry

import "github.com/hyperspotdev/hyperspot/pkg/module"

// Registrations is the link-time plugin registry (spec.md §9): each module
// package's init() appends its descriptor to this slice before main runs.
// Package-level state is the Go idiom for "process-wide immutable
// collection populated at program start" — there is no generics-based or
// reflection-based plugin loader anywhere in the example corpus to borrow
// from instead.
var Registrations []module.Descriptor

// Register appends d to Registrations. Called from a module package's
// init() function, e.g.:
//
//	func init() {
//		registry.Register(module.Descriptor{Name: "sysmetrics", ...})
//	}
func Register(d module.Descriptor) {
	Registrations = append(Registrations, d)
}

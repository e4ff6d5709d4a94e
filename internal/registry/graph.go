package registry

import (
	"fmt"
	"sort"

	"github.com/hyperspotdev/hyperspot/pkg/hserr"
	"github.com/hyperspotdev/hyperspot/pkg/module"
)

// ErrDescriptorConflict is returned by Build on a duplicate name, an
// unknown dependency, a dependency cycle, or more than one REST_HOST
// descriptor. It wraps hserr.ErrDescriptorConflict.
var ErrDescriptorConflict = hserr.ErrDescriptorConflict

// dbPseudoName is the logical dependency name a DATABASE-capable module may
// declare against the external database factory (spec.md §4.4); it never
// refers to another descriptor and is always considered satisfied.
const dbPseudoName = "db"

// node is one descriptor plus the instance its constructor produced,
// carried together once Build has run New() exactly once per descriptor.
type node struct {
	desc     module.Descriptor
	instance module.Instance
}

// Graph is the dependency-sorted, validated set of module instances ready
// for phase execution.
type Graph struct {
	order    []node
	restHost string // name of the REST_HOST descriptor, "" if none
}

// Build validates descs (name uniqueness, known dependencies, at most one
// REST_HOST, no cycles), constructs one instance per descriptor via its
// constructor, and computes the topological order — ties broken by name, so
// discovery order never affects the result (spec.md §4.4, §9).
func Build(descs []module.Descriptor) (*Graph, error) {
	byName := make(map[string]module.Descriptor, len(descs))
	restHost := ""

	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDescriptorConflict, err)
		}
		if _, dup := byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate module name %q", ErrDescriptorConflict, d.Name)
		}
		byName[d.Name] = d

		if d.Capabilities.Has(module.RESTHost) {
			if restHost != "" {
				return nil, fmt.Errorf("%w: more than one REST_HOST module (%q and %q)", ErrDescriptorConflict, restHost, d.Name)
			}
			restHost = d.Name
		}
	}

	deps := make(map[string][]string, len(descs))
	for _, d := range descs {
		effDeps := append([]string(nil), d.Dependencies...)
		if d.Capabilities.Has(module.REST) && !d.Capabilities.Has(module.RESTHost) {
			if restHost == "" {
				return nil, fmt.Errorf("%w: REST module %q requires a REST_HOST module but none is registered", ErrDescriptorConflict, d.Name)
			}
			effDeps = append(effDeps, restHost)
		}
		resolved := make([]string, 0, len(effDeps))
		for _, dep := range effDeps {
			if dep == dbPseudoName {
				continue
			}
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("%w: module %q depends on unknown module %q", ErrDescriptorConflict, d.Name, dep)
			}
			resolved = append(resolved, dep)
		}
		deps[d.Name] = resolved
	}

	sorted, err := topoSort(descs, deps)
	if err != nil {
		return nil, err
	}

	g := &Graph{restHost: restHost}
	for _, name := range sorted {
		d := byName[name]
		inst, err := d.New()
		if err != nil {
			return nil, fmt.Errorf("constructing module %q: %w", name, err)
		}
		g.order = append(g.order, node{desc: d, instance: inst})
	}
	return g, nil
}

// topoSort computes Kahn's algorithm over deps, breaking ties among
// simultaneously-ready nodes by name so the result is deterministic
// regardless of registration order (spec.md §4.4: "ties are broken by name
// to make discovery deterministic").
func topoSort(descs []module.Descriptor, deps map[string][]string) ([]string, error) {
	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}
	sort.Strings(names)

	indegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, name := range names {
		indegree[name] = len(deps[name])
	}
	for name, ds := range deps {
		for _, dep := range ds {
			dependents[dep] = append(dependents[dep], name)
		}
	}
	for dep := range dependents {
		sort.Strings(dependents[dep])
	}

	var ready []string
	for _, name := range names {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var out []string
	for len(ready) > 0 {
		sort.Strings(ready)
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)

		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(out) != len(names) {
		var stuck []string
		for _, name := range names {
			if indegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: dependency cycle among %v", ErrDescriptorConflict, stuck)
	}
	return out, nil
}

// Names returns the modules in dependency (init) order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.order))
	for i, n := range g.order {
		names[i] = n.desc.Name
	}
	return names
}

// RESTHostName returns the REST_HOST descriptor's name, or "" if none is
// registered.
func (g *Graph) RESTHostName() string {
	return g.restHost
}

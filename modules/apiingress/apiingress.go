// Package apiingress registers internal/ingress.Ingress as the process's
// single REST_HOST module (spec.md §4.6, C6). It exists only to give the
// already-complete Ingress type a module.Descriptor and a link-time
// registration — every behavior lives in internal/ingress.
package apiingress

import (
	"github.com/hyperspotdev/hyperspot/internal/ingress"
	"github.com/hyperspotdev/hyperspot/internal/registry"
	"github.com/hyperspotdev/hyperspot/pkg/module"
)

func init() {
	registry.Register(module.Descriptor{
		Name:         "api_ingress",
		Capabilities: module.NewSet(module.Core, module.REST, module.RESTHost, module.Stateful),
		New:          func() (module.Instance, error) { return ingress.New(), nil },
	})
}

package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/integrators"
)

type IntegratorFactory func(cfg dynamo.Config) dynamo.Integrator

type Registry struct {
	integrators map[string]IntegratorFactory
}

func NewRegistry() *Registry {
	r := &Registry{integrators: make(map[string]IntegratorFactory)}

	r.Register("rk45", func(cfg dynamo.Config) dynamo.Integrator { return integrators.NewRK45(cfg) })
	r.Register("rk4", func(cfg dynamo.Config) dynamo.Integrator { return integrators.NewRK4(cfg) })
	r.Register("euler", func(cfg dynamo.Config) dynamo.Integrator { return integrators.NewEuler(cfg) })

	return r
}

func (r *Registry) Register(name string, fn IntegratorFactory) {
	r.integrators[name] = fn
}

func (r *Registry) GetIntegrator(name string, cfg dynamo.Config) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", dynamo.ErrUnknownIntegrator, name, r.ListIntegrators())
	}
	return fn(cfg), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

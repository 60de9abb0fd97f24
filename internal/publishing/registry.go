package publishing

import (
	"fmt"
	"sort"

	"ContentActivation/internal/ports"
)

// Registry keeps destination platforms by name.
type Registry struct {
	platforms map[string]ports.Platform
}

func NewRegistry(platforms ...ports.Platform) *Registry {
	r := &Registry{platforms: map[string]ports.Platform{}}
	for _, p := range platforms {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a platform implementation.
func (r *Registry) Register(p ports.Platform) {
	if r.platforms == nil {
		r.platforms = map[string]ports.Platform{}
	}
	r.platforms[p.Name()] = p
}

// Resolve returns a platform by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.Platform, error) {
	if p, ok := r.platforms[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("platform %s is not registered", name)
}

// Names lists registered platforms in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.platforms))
	for name := range r.platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

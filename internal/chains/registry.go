package chains

import "fmt"

// Registry is built once at startup and only read afterwards, so it is safe
// for concurrent use without locking.
type Registry struct {
	chains []Chain
	byID   map[string]int
}

func NewRegistry(chains ...Chain) (*Registry, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("registry needs at least one chain")
	}
	r := &Registry{
		chains: make([]Chain, 0, len(chains)),
		byID:   make(map[string]int, len(chains)),
	}
	for _, c := range chains {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate chain id %s", c.ID)
		}
		c.Tokens = append([]Token(nil), c.Tokens...)
		r.byID[c.ID] = len(r.chains)
		r.chains = append(r.chains, c)
	}
	return r, nil
}

func (r *Registry) Lookup(id string) (Chain, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Chain{}, false
	}
	return r.chains[idx], true
}

// IDs returns chain ids in registry order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c.ID)
	}
	return out
}

// Names returns display names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c.Name)
	}
	return out
}

func (r *Registry) Chains() []Chain {
	return append([]Chain(nil), r.chains...)
}

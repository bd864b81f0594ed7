package providers

import (
	"ai_metering/internal/models"
)

// Registry holds the configured providers, indexed by provider id and
// by canonical credential name. It is built once at startup and
// read-only afterwards.
type Registry struct {
	byID         map[models.ProviderID]Provider
	byCredential map[string]Provider
}

// NewRegistry creates a registry over the given providers. A later
// provider with a duplicate id or credential name wins, matching how
// configuration overrides are applied elsewhere.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{
		byID:         make(map[models.ProviderID]Provider, len(providers)),
		byCredential: make(map[string]Provider, len(providers)),
	}
	for _, p := range providers {
		r.byID[p.ID()] = p
		r.byCredential[p.CredentialName()] = p
	}
	return r
}

// Get returns the provider for an id.
func (r *Registry) Get(id models.ProviderID) (Provider, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// ForCredential returns the provider that owns a credential name.
func (r *Registry) ForCredential(name string) (Provider, bool) {
	p, ok := r.byCredential[name]
	return p, ok
}

// List returns all registered providers.
func (r *Registry) List() []Provider {
	out := make([]Provider, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out
}

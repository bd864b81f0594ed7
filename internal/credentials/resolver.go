package credentials

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"ai_metering/internal/models"
	"ai_metering/internal/providers"
	"ai_metering/internal/storage"
	"ai_metering/internal/utils"
)

const defaultProbeTimeout = 10 * time.Second

// Resolver resolves credentials with a fixed precedence: cache first,
// then the process environment, then the durable store. Found values
// populate the cache. Rotation is serialized per credential name and
// validated against the live provider before anything is written.
type Resolver struct {
	cache        *storage.LRUCache
	store        Store
	registry     *providers.Registry
	probeTimeout time.Duration
	logger       *utils.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewResolver creates a credential resolver
func NewResolver(cache *storage.LRUCache, store Store, registry *providers.Registry, probeTimeout time.Duration) *Resolver {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}

	return &Resolver{
		cache:        cache,
		store:        store,
		registry:     registry,
		probeTimeout: probeTimeout,
		logger:       utils.NewLogger("credentials"),
		locks:        make(map[string]*sync.Mutex),
	}
}

// Resolve looks up a credential by name. With envOnly set, the durable
// store is skipped and only the cache and the environment are
// consulted. Returns ErrNotFound when no source has the value; a store
// read failure is also reported as ErrNotFound so a broken backend
// never serves a partial value.
func (r *Resolver) Resolve(ctx context.Context, name string, envOnly bool) (*models.Credential, error) {
	if cached, ok := r.cache.Get(name); ok {
		return &models.Credential{
			Name:   name,
			Value:  cached.(string),
			Source: models.SourceCache,
		}, nil
	}

	if value := os.Getenv(name); value != "" {
		r.cache.Set(name, value)
		return &models.Credential{
			Name:   name,
			Value:  value,
			Source: models.SourceEnvironment,
		}, nil
	}

	if envOnly {
		return nil, ErrNotFound
	}

	cred, err := r.store.Get(ctx, r.storeKey(name))
	if err != nil {
		if !errors.Is(err, storage.ErrCredentialNotFound) {
			// Fail closed on persistence errors
			r.logger.Error("Credential store read failed", "name", name, "error", err)
		}
		return nil, ErrNotFound
	}

	r.cache.Set(name, cred.Value)
	return &models.Credential{
		Name:      name,
		Value:     cred.Value,
		Source:    models.SourceStore,
		CreatedAt: cred.CreatedAt,
		UpdatedAt: cred.UpdatedAt,
	}, nil
}

// Validate resolves a credential and probes the owning provider with
// it. Anything short of an accepted probe counts as invalid: a missing
// credential, a provider the registry does not know, a network error,
// or an explicit rejection.
func (r *Resolver) Validate(ctx context.Context, name string) bool {
	cred, err := r.Resolve(ctx, name, false)
	if err != nil {
		return false
	}

	provider, ok := r.registry.ForCredential(name)
	if !ok {
		r.logger.Warn("No provider registered for credential", "name", name)
		return false
	}

	if err := r.probe(ctx, provider, cred.Value); err != nil {
		r.logger.Info("Credential probe failed", "name", name, "error", err)
		return false
	}
	return true
}

// Rotate replaces a credential's value. The candidate is probed
// against the provider first; a rejected value leaves store and cache
// untouched and returns ErrValidationFailed. On acceptance the store
// is written first and the cache updated last, so a resolver that runs
// concurrently with a rotation never observes the old value after
// Rotate returns. Rotations of the same name are serialized;
// different names proceed independently.
func (r *Resolver) Rotate(ctx context.Context, name, newValue string) error {
	lock := r.nameLock(name)
	lock.Lock()
	defer lock.Unlock()

	provider, ok := r.registry.ForCredential(name)
	if !ok {
		return ErrValidationFailed
	}

	if err := r.probe(ctx, provider, newValue); err != nil {
		r.logger.Warn("Rotation rejected by provider probe", "name", name, "error", err)
		return ErrValidationFailed
	}

	if err := r.store.Upsert(ctx, r.storeKey(name), newValue); err != nil {
		return err
	}

	r.cache.Set(name, newValue)
	r.logger.Info("Credential rotated", "name", name, "provider", provider.ID())
	return nil
}

// ClearCache drops all cached credentials. Idempotent.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

// storeKey maps a canonical credential name to the field name the
// durable store uses for it. Names without a registered provider are
// stored under the name itself.
func (r *Resolver) storeKey(name string) string {
	if provider, ok := r.registry.ForCredential(name); ok {
		return provider.StoreKey()
	}
	return name
}

func (r *Resolver) probe(ctx context.Context, provider providers.Provider, value string) error {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()
	return provider.Probe(probeCtx, value)
}

func (r *Resolver) nameLock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[name] = lock
	}
	return lock
}

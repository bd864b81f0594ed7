package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ai_metering/internal/models"
)

// ErrCredentialRejected is returned by Probe when the provider
// answered but refused the credential (401/403-class response).
var ErrCredentialRejected = errors.New("credential rejected by provider")

const defaultProbeTimeout = 10 * time.Second

// Provider describes one third-party AI API from the metering layer's
// point of view: which credential it authenticates with, how that
// credential is named in the durable store, and how to cheaply verify
// a candidate value against the live API. Adding a provider means
// adding an implementation here, not editing shared control flow.
type Provider interface {
	// ID returns the provider identity used in usage events and pricing.
	ID() models.ProviderID

	// CredentialName returns the canonical credential key, which is
	// also the environment variable consulted during resolution
	// (e.g. "OPENAI_API_KEY").
	CredentialName() string

	// StoreKey returns the name the durable store keeps the secret
	// under. Legacy deployments named some store fields differently
	// from the canonical key, so the two may diverge.
	StoreKey() string

	// Probe performs a lightweight authenticated call with the given
	// credential value. It returns nil when the provider accepts the
	// credential, ErrCredentialRejected when it refuses it, and any
	// other error for network or server trouble. Callers bound it
	// with a context timeout.
	Probe(ctx context.Context, credential string) error
}

// newProbeClient builds the HTTP client shared by probe
// implementations. The client timeout is a backstop; per-call
// deadlines come from the caller's context.
func newProbeClient() *http.Client {
	return &http.Client{
		Timeout: defaultProbeTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// checkProbeStatus translates a probe response status into the probe
// error contract.
func checkProbeStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrCredentialRejected
	default:
		return errors.New("unexpected provider response: " + http.StatusText(status))
	}
}

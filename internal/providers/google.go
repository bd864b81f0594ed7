package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"ai_metering/internal/models"
)

const googleDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GoogleProvider meters calls to the Google Generative Language API.
type GoogleProvider struct {
	client  *http.Client
	baseURL string
}

// NewGoogleProvider creates the Google provider.
func NewGoogleProvider(baseURL string) *GoogleProvider {
	if baseURL == "" {
		baseURL = googleDefaultBaseURL
	}
	return &GoogleProvider{
		client:  newProbeClient(),
		baseURL: baseURL,
	}
}

func (p *GoogleProvider) ID() models.ProviderID {
	return models.ProviderGoogle
}

func (p *GoogleProvider) CredentialName() string {
	return "GOOGLE_AI_API_KEY"
}

func (p *GoogleProvider) StoreKey() string {
	return "googleAiKey"
}

// Probe lists models. Google passes the API key as a query parameter.
func (p *GoogleProvider) Probe(ctx context.Context, credential string) error {
	probeURL := p.baseURL + "/models?key=" + url.QueryEscape(credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// Google answers 400 for malformed keys where others answer 401.
	if resp.StatusCode == http.StatusBadRequest {
		return ErrCredentialRejected
	}
	return checkProbeStatus(resp.StatusCode)
}

package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"ai_metering/internal/models"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// OpenAIProvider meters calls to the OpenAI API.
type OpenAIProvider struct {
	client  *http.Client
	baseURL string
}

// NewOpenAIProvider creates the OpenAI provider. An empty baseURL uses
// the public API endpoint.
func NewOpenAIProvider(baseURL string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	return &OpenAIProvider{
		client:  newProbeClient(),
		baseURL: baseURL,
	}
}

func (p *OpenAIProvider) ID() models.ProviderID {
	return models.ProviderOpenAI
}

func (p *OpenAIProvider) CredentialName() string {
	return "OPENAI_API_KEY"
}

func (p *OpenAIProvider) StoreKey() string {
	// Store rows predate the canonical naming.
	return "openaiApiKey"
}

// Probe lists models, the cheapest authenticated OpenAI call.
func (p *OpenAIProvider) Probe(ctx context.Context, credential string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return checkProbeStatus(resp.StatusCode)
}

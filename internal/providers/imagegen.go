package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"ai_metering/internal/models"
)

const imageGenDefaultBaseURL = "https://api.stability.ai/v1"

// ImageGenProvider meters calls to the image generation API.
type ImageGenProvider struct {
	client  *http.Client
	baseURL string
}

// NewImageGenProvider creates the image generation provider.
func NewImageGenProvider(baseURL string) *ImageGenProvider {
	if baseURL == "" {
		baseURL = imageGenDefaultBaseURL
	}
	return &ImageGenProvider{
		client:  newProbeClient(),
		baseURL: baseURL,
	}
}

func (p *ImageGenProvider) ID() models.ProviderID {
	return models.ProviderImageGen
}

func (p *ImageGenProvider) CredentialName() string {
	return "IMAGE_GENERATION_API_KEY"
}

func (p *ImageGenProvider) StoreKey() string {
	return "stabilityApiKey"
}

// Probe fetches the account record, which only needs a valid key.
func (p *ImageGenProvider) Probe(ctx context.Context, credential string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/user/account", nil)
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

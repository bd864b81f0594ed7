package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"ai_metering/internal/models"
)

const azureAPIVersion = "2024-02-01"

// AzureProvider meters calls to an Azure OpenAI resource. Unlike the
// other providers the base URL is deployment-specific and required.
type AzureProvider struct {
	client   *http.Client
	endpoint string
}

// NewAzureProvider creates the Azure provider for one resource
// endpoint, e.g. "https://myresource.openai.azure.com".
func NewAzureProvider(endpoint string) *AzureProvider {
	return &AzureProvider{
		client:   newProbeClient(),
		endpoint: endpoint,
	}
}

func (p *AzureProvider) ID() models.ProviderID {
	return models.ProviderAzure
}

func (p *AzureProvider) CredentialName() string {
	return "AZURE_OPENAI_API_KEY"
}

func (p *AzureProvider) StoreKey() string {
	return "azureOpenaiKey"
}

// Probe lists deployments on the resource. Azure authenticates with an
// api-key header rather than a bearer token.
func (p *AzureProvider) Probe(ctx context.Context, credential string) error {
	if p.endpoint == "" {
		return fmt.Errorf("azure endpoint not configured")
	}

	url := fmt.Sprintf("%s/openai/models?api-version=%s", p.endpoint, azureAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}
	req.Header.Set("api-key", credential)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return checkProbeStatus(resp.StatusCode)
}

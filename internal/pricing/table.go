package pricing

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"ai_metering/internal/models"
)

// ModelRates holds every rate configured for a single model. Token
// rates are USD per 1M tokens. PerCall maps an output-size tier to a
// flat USD rate per call (image models).
type ModelRates struct {
	InputPer1M  float64
	OutputPer1M float64
	PerCall     map[string]float64
	DefaultTier string
}

// TokenPriced reports whether the model carries token rates.
func (r ModelRates) TokenPriced() bool {
	return r.InputPer1M > 0 || r.OutputPer1M > 0
}

type providerRates struct {
	models       map[string]ModelRates
	defaultModel string
}

// Table maps (provider, model) to rates. It is populated once at
// startup (built-in defaults, then optional file and database
// overrides) and is immutable afterwards, so lookups need no locking;
// the mutex only guards the load phase.
type Table struct {
	mu        sync.Mutex
	loaded    bool
	providers map[models.ProviderID]providerRates
	fallback  ModelRates
}

// NewTable returns a table pre-populated with the built-in defaults.
func NewTable() *Table {
	return &Table{
		providers: defaultRates(),
		fallback:  globalFallback,
	}
}

// Rates resolves the rates for (provider, model). An unknown model
// falls back to the provider's designated default model; an unknown
// provider falls back to the conservative global default. A billable
// call therefore never silently resolves to a zero rate.
func (t *Table) Rates(provider models.ProviderID, model string) ModelRates {
	pt, ok := t.providers[provider]
	if !ok {
		return t.fallback
	}

	if rates, ok := pt.models[model]; ok {
		return rates
	}

	if rates, ok := pt.models[pt.defaultModel]; ok {
		return rates
	}

	return t.fallback
}

// DefaultModel returns the designated default model for a provider,
// empty if the provider is unknown.
func (t *Table) DefaultModel(provider models.ProviderID) string {
	return t.providers[provider].defaultModel
}

// ApplyEntries overlays pricing rows loaded from the durable store on
// top of the current table. Must be called before the table is served.
func (t *Table) ApplyEntries(entries []models.PricingEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loaded {
		return fmt.Errorf("pricing table already serving, refusing to mutate")
	}

	for _, e := range entries {
		if e.Rate < 0 {
			return fmt.Errorf("negative rate for %s/%s", e.Provider, e.Model)
		}

		pt, ok := t.providers[e.Provider]
		if !ok {
			pt = providerRates{models: make(map[string]ModelRates)}
		}

		rates := pt.models[e.Model]
		switch e.Unit {
		case models.UnitInputToken:
			rates.InputPer1M = e.Rate
		case models.UnitOutputToken:
			rates.OutputPer1M = e.Rate
		case models.UnitFixedPerCall:
			if rates.PerCall == nil {
				rates.PerCall = make(map[string]float64)
			}
			tier := ""
			if e.Tier != nil {
				tier = *e.Tier
			}
			rates.PerCall[tier] = e.Rate
			if rates.DefaultTier == "" {
				rates.DefaultTier = tier
			}
		default:
			return fmt.Errorf("unknown pricing unit %q for %s/%s", e.Unit, e.Provider, e.Model)
		}

		if pt.defaultModel == "" {
			pt.defaultModel = e.Model
		}
		pt.models[e.Model] = rates
		t.providers[e.Provider] = pt
	}

	return nil
}

// Seal marks the table as serving. Later ApplyEntries/ApplyFile calls fail.
func (t *Table) Seal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loaded = true
}

//
// File override (YAML)
//

type fileModel struct {
	InputPer1M  float64            `yaml:"input_per_1m"`
	OutputPer1M float64            `yaml:"output_per_1m"`
	PerCall     map[string]float64 `yaml:"per_call"`
	DefaultTier string             `yaml:"default_tier"`
}

type fileProvider struct {
	DefaultModel string               `yaml:"default_model"`
	Models       map[string]fileModel `yaml:"models"`
}

type fileTable struct {
	Providers map[string]fileProvider `yaml:"providers"`
}

// ApplyFile overlays rates from a YAML pricing file. Must be called
// before the table is served.
func (t *Table) ApplyFile(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loaded {
		return fmt.Errorf("pricing table already serving, refusing to mutate")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read pricing file: %w", err)
	}

	var ft fileTable
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return fmt.Errorf("failed to parse pricing file: %w", err)
	}

	for name, fp := range ft.Providers {
		provider := models.ProviderID(name)
		pt, ok := t.providers[provider]
		if !ok {
			pt = providerRates{models: make(map[string]ModelRates)}
		}

		for model, fm := range fp.Models {
			rates := pt.models[model]
			if fm.InputPer1M > 0 {
				rates.InputPer1M = fm.InputPer1M
			}
			if fm.OutputPer1M > 0 {
				rates.OutputPer1M = fm.OutputPer1M
			}
			if len(fm.PerCall) > 0 {
				if rates.PerCall == nil {
					rates.PerCall = make(map[string]float64)
				}
				for tier, rate := range fm.PerCall {
					rates.PerCall[tier] = rate
				}
			}
			if fm.DefaultTier != "" {
				rates.DefaultTier = fm.DefaultTier
			}
			pt.models[model] = rates
		}

		if fp.DefaultModel != "" {
			pt.defaultModel = fp.DefaultModel
		}
		if pt.defaultModel == "" {
			for model := range pt.models {
				pt.defaultModel = model
				break
			}
		}
		t.providers[provider] = pt
	}

	return nil
}

// Package config defines engine configuration and loading.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars
//   on top.
// - External errors are wrapped via this package's sentinel errors.
package config

import (
	"runtime"
)

// Default scoring knobs. The weights are points, not ratios: the three
// dimension maxima sum to 100 by default but are independently tunable.
const (
	DefaultAmountExactWeight      = 40.0
	DefaultAmountCloseWeight      = 20.0
	DefaultDateProximityWeight    = 30.0
	DefaultTextSimilarityWeight   = 30.0
	DefaultAmountTolerancePercent = 2.0
	DefaultDateProximityDays      = 3
	DefaultMaxTopN                = 20
	DefaultNarrativeTimeoutMS     = 5000
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// AmountExactWeight is the maximum amount sub-score, awarded on exact
	// decimal equality.
	AmountExactWeight float64 `koanf:"amount_exact_weight"`

	// AmountCloseWeight is the near-miss amount knob exposed alongside
	// the exact weight for callers that tune the scorer.
	AmountCloseWeight float64 `koanf:"amount_close_weight"`

	// DateProximityWeight is the maximum date sub-score.
	DateProximityWeight float64 `koanf:"date_proximity_weight"`

	// TextSimilarityWeight is the maximum text sub-score.
	TextSimilarityWeight float64 `koanf:"text_similarity_weight"`

	// AmountTolerancePercent marks the difference still called "within
	// tolerance" in explanations.
	AmountTolerancePercent float64 `koanf:"amount_tolerance_percent"`

	// DateProximityDays is the steep-decay window around the invoice date.
	DateProximityDays int `koanf:"date_proximity_days"`

	// MaxTopN caps the candidates a single ranking request may ask for.
	MaxTopN int `koanf:"max_top_n"`

	// WorkerCount sets the number of parallel pair-scoring goroutines.
	WorkerCount int `koanf:"worker_count"`

	// NarrativeProvider selects the optional text-generation capability:
	// openai, anthropic or mock.
	NarrativeProvider string `koanf:"narrative_provider"`

	// NarrativeModel overrides the provider's default model.
	NarrativeModel string `koanf:"narrative_model"`

	// NarrativeAPIKey authenticates against the provider. Empty means the
	// capability reports itself unavailable.
	NarrativeAPIKey string `koanf:"narrative_api_key"`

	// NarrativeTimeoutMS bounds a single narrative attempt so a hung
	// provider never blocks the deterministic fallback.
	NarrativeTimeoutMS int `koanf:"narrative_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		AmountExactWeight:      DefaultAmountExactWeight,
		AmountCloseWeight:      DefaultAmountCloseWeight,
		DateProximityWeight:    DefaultDateProximityWeight,
		TextSimilarityWeight:   DefaultTextSimilarityWeight,
		AmountTolerancePercent: DefaultAmountTolerancePercent,
		DateProximityDays:      DefaultDateProximityDays,
		MaxTopN:                DefaultMaxTopN,
		WorkerCount:            runtime.NumCPU(),
		NarrativeProvider:      "mock",
		NarrativeTimeoutMS:     DefaultNarrativeTimeoutMS,
	}
}

// Snapshot returns the active configuration for debug output. The API key
// is reported only as present or absent.
func (c *Config) Snapshot() map[string]any {
	apiKey := "absent"
	if c.NarrativeAPIKey != "" {
		apiKey = "present"
	}
	return map[string]any{
		"log_level": c.LogLevel,
		"scoring_weights": map[string]any{
			"amount_exact":    c.AmountExactWeight,
			"amount_close":    c.AmountCloseWeight,
			"date_proximity":  c.DateProximityWeight,
			"text_similarity": c.TextSimilarityWeight,
		},
		"tolerances": map[string]any{
			"amount_tolerance_percent": c.AmountTolerancePercent,
			"date_proximity_days":      c.DateProximityDays,
		},
		"max_top_n":    c.MaxTopN,
		"worker_count": c.WorkerCount,
		"narrative": map[string]any{
			"provider":   c.NarrativeProvider,
			"model":      c.NarrativeModel,
			"api_key":    apiKey,
			"timeout_ms": c.NarrativeTimeoutMS,
		},
	}
}

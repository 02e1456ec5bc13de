package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if RECON_CONFIG is set
//  3. env (prefix RECON_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RECON_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: RECON_AMOUNT_EXACT_WEIGHT, RECON_MAX_TOP_N, ...
	// Underscores are preserved so env keys map onto the koanf struct tags.
	envProvider := env.Provider("RECON_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "recon_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.AmountExactWeight < 0 || c.AmountCloseWeight < 0 ||
		c.DateProximityWeight < 0 || c.TextSimilarityWeight < 0 {
		return fmt.Errorf("%w: scoring weights must not be negative", ErrInvalidConfig)
	}
	if c.AmountTolerancePercent < 0 {
		return fmt.Errorf("%w: amount_tolerance_percent must not be negative", ErrInvalidConfig)
	}
	if c.DateProximityDays < 0 {
		return fmt.Errorf("%w: date_proximity_days must not be negative", ErrInvalidConfig)
	}
	if c.MaxTopN <= 0 {
		return fmt.Errorf("%w: max_top_n must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.NarrativeTimeoutMS <= 0 {
		return fmt.Errorf("%w: narrative_timeout_ms must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.NarrativeProvider) {
	case "", "mock", "openai", "anthropic":
	default:
		return fmt.Errorf("%w: unknown narrative_provider %q", ErrInvalidConfig, c.NarrativeProvider)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lerian-kg/kgarbiter/pkg/merrors"
)

// files are the fixed config file names read from a directory (§6).
var files = []string{
	"entity_types.yaml",
	"relation_types.yaml",
	"alias_dictionary.yaml",
	"validation_schema.yaml",
	"static_domain.yaml",
	"engine.yaml",
}

// Load reads every present file under dir into a fresh Config seeded
// with Default(), and validates the result. Missing files are not an
// error (a host may supply only the files it wants to override); a
// malformed file is a ConfigError (§7, CRITICAL, not retryable).
func Load(dir string) (*Config, error) {
	cfg := Default()

	for _, name := range files {
		path := filepath.Join(dir, name)

		b, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return nil, merrors.NewConfigError(path, err)
		}

		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, merrors.NewConfigError(path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, merrors.NewConfigError(dir, err)
	}

	return cfg, nil
}

// Validate checks the structural invariants configuration must satisfy
// before the engine starts (§7 ConfigError: missing or malformed config).
func (c *Config) Validate() error {
	if c.ValidationSchema.Thresholds.PersonalCandidate > c.ValidationSchema.Thresholds.DomainCandidate {
		return merrors.NewValidationError("validation_schema.thresholds",
			"personal_candidate threshold must not exceed domain_candidate threshold")
	}

	sumW := c.ValidationSchema.Weights.Student + c.ValidationSchema.Weights.Sign + c.ValidationSchema.Weights.Semantic
	if sumW <= 0 {
		return merrors.NewValidationError("validation_schema.weights", "combined-confidence weights must sum to a positive value")
	}

	for _, r := range c.StaticDomain.Rules {
		if r.Certainty < 0 || r.Certainty > 1 {
			return merrors.NewValidationError("static_domain.static_rules", "certainty must be in [0,1] for rule "+r.RuleID)
		}
	}

	if c.DynamicUpdate.DecayDays <= 0 {
		return merrors.NewValidationError("dynamic_update.decay_days", "must be positive")
	}

	return nil
}

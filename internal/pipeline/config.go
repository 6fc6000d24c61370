package pipeline

import (
	"fmt"

	"github.com/spigell/skillfit/internal/bias"
	"github.com/spigell/skillfit/internal/matcher"
	"github.com/spigell/skillfit/internal/panel"
	"github.com/spigell/skillfit/internal/whatif"
)

// Thresholds are the score cut points the what-if stages work against.
type Thresholds struct {
	Hire   float64 `mapstructure:"hire"`
	Target float64 `mapstructure:"target"`
}

// Config holds every tunable of an evaluation.
type Config struct {
	Extraction  matcher.Policy  `mapstructure:"extraction"`
	Bias        bias.Config     `mapstructure:"bias"`
	Thresholds  Thresholds      `mapstructure:"thresholds"`
	Personas    []panel.Persona `mapstructure:"personas"`
	Disabled    []string        `mapstructure:"disabled"`
	Parallelism int             `mapstructure:"parallelism"`
}

func DefaultConfig() Config {
	return Config{
		Extraction: matcher.DefaultPolicy(),
		Bias:       bias.DefaultConfig(),
		Thresholds: Thresholds{
			Hire:   whatif.DefaultHireThreshold,
			Target: whatif.DefaultTarget,
		},
		Personas:    panel.DefaultPersonas(),
		Parallelism: 1,
	}
}

// Validate reports configuration errors that would otherwise surface in the
// middle of an evaluation.
func (c *Config) Validate() error {
	if err := ValidateDisabled(c.Disabled); err != nil {
		return err
	}
	if err := validateThresholds(c); err != nil {
		return err
	}
	if err := panel.ValidatePersonas(c.Personas); err != nil {
		return fmt.Errorf("personas: %w", err)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism)
	}
	return nil
}

// Package bias applies bounded corrections for structural scoring unfairness
// and reports diagnostics over multi-role comparisons.
package bias

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spigell/skillfit/internal/skills"
	"github.com/spigell/skillfit/internal/utils"
)

// Flag names, in evaluation order.
const (
	FlagJDInflation    = "jd_inflation_detected"
	FlagSkillDensity   = "skill_density_penalty"
	FlagVocabularyRisk = "vocabulary_bias_risk"
)

//nolint:gochecknoglobals
var flagOrder = []string{FlagJDInflation, FlagSkillDensity, FlagVocabularyRisk}

// Config holds the heuristics' thresholds and bonuses.
type Config struct {
	MaxAdjustment          float64  `mapstructure:"max-adjustment"`
	JDInflationSize        int      `mapstructure:"jd-inflation-size"`
	JDInflationBonus       float64  `mapstructure:"jd-inflation-bonus"`
	MinResumeSkills        int      `mapstructure:"min-resume-skills"`
	DensityScoreCeiling    float64  `mapstructure:"density-score-ceiling"`
	DensityBonus           float64  `mapstructure:"density-bonus"`
	GenericVocabulary      []string `mapstructure:"generic-vocabulary"`
	VocabularyScoreCeiling float64  `mapstructure:"vocabulary-score-ceiling"`
	VocabularyBonus        float64  `mapstructure:"vocabulary-bonus"`
}

// DefaultConfig returns the standard heuristics.
func DefaultConfig() Config {
	return Config{
		MaxAdjustment:          10,
		JDInflationSize:        18,
		JDInflationBonus:       4,
		MinResumeSkills:        8,
		DensityScoreCeiling:    65,
		DensityBonus:           3,
		GenericVocabulary:      []string{"python", "sql", "ml", "ai"},
		VocabularyScoreCeiling: 70,
		VocabularyBonus:        3,
	}
}

// Result is the outcome of a bias audit.
type Result struct {
	OriginalScore float64         `json:"original_score"`
	AdjustedScore float64         `json:"adjusted_score"`
	Adjustment    float64         `json:"adjustment"`
	Flags         map[string]bool `json:"bias_flags"`
	Reasoning     string          `json:"adjustment_reasoning"`
}

func (Result) Stage() string { return "bias" }

// Active returns the triggered flags in evaluation order.
func (r Result) Active() []string {
	return ActiveFlags(r.Flags)
}

// ActiveFlags returns the names of the set flags in evaluation order.
func ActiveFlags(flags map[string]bool) []string {
	var out []string
	for _, name := range flagOrder {
		if flags[name] {
			out = append(out, name)
		}
	}
	return out
}

// Adjuster evaluates the bias heuristics.
type Adjuster struct {
	cfg     Config
	generic skills.Set
}

func NewAdjuster(cfg Config) *Adjuster {
	if cfg.MaxAdjustment < 0 {
		cfg.MaxAdjustment = 0
	}
	return &Adjuster{cfg: cfg, generic: skills.NewSet(cfg.GenericVocabulary...)}
}

// Adjust never lowers the score and never raises it by more than the
// configured maximum. The three checks are independent of each other.
func (a *Adjuster) Adjust(resume, role skills.Set, original float64) Result {
	flags := map[string]bool{
		FlagJDInflation:    role.Len() >= a.cfg.JDInflationSize,
		FlagSkillDensity:   resume.Len() < a.cfg.MinResumeSkills && original < a.cfg.DensityScoreCeiling,
		FlagVocabularyRisk: resume.Intersect(a.generic).Len() > 0 && original < a.cfg.VocabularyScoreCeiling,
	}

	adjustment := 0.0
	if flags[FlagJDInflation] {
		adjustment += math.Max(a.cfg.JDInflationBonus, 0)
	}
	if flags[FlagSkillDensity] {
		adjustment += math.Max(a.cfg.DensityBonus, 0)
	}
	if flags[FlagVocabularyRisk] {
		adjustment += math.Max(a.cfg.VocabularyBonus, 0)
	}
	adjustment = math.Min(adjustment, a.cfg.MaxAdjustment)

	adjusted := math.Min(utils.Round(original+adjustment, 2), 100)
	if adjusted < original {
		adjusted = original
	}

	triggered := ActiveFlags(flags)
	names := "None"
	if len(triggered) > 0 {
		names = strings.Join(triggered, ", ")
	}

	return Result{
		OriginalScore: original,
		AdjustedScore: adjusted,
		Adjustment:    adjustment,
		Flags:         flags,
		Reasoning: fmt.Sprintf(
			"Bias audit applied. Original score %s adjusted by +%s. Triggered checks: %s. All adjustments are bounded and require human oversight.",
			formatFloat(original), formatFloat(adjustment), names,
		),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

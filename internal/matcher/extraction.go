package matcher

import (
	"context"

	"github.com/spigell/skillfit/internal/skills"
)

const (
	DefaultConfidenceThreshold = 0.15
	DefaultMandatoryThreshold  = 0.30
)

// Policy turns raw records into a skill set.
type Policy struct {
	// ConfidenceThreshold is the minimum confidence a record needs to be kept.
	ConfidenceThreshold float64 `mapstructure:"confidence-threshold"`
	// MaxSkills caps the kept records, highest confidence first. Zero keeps all.
	MaxSkills int `mapstructure:"max-skills"`
	// MandatoryThreshold splits job description skills into mandatory and optional.
	MandatoryThreshold float64 `mapstructure:"mandatory-threshold"`
}

// DefaultPolicy returns the standard extraction policy.
func DefaultPolicy() Policy {
	return Policy{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		MandatoryThreshold:  DefaultMandatoryThreshold,
	}
}

// Extraction is the filtered outcome of a matcher run.
type Extraction struct {
	Skills   skills.Set        `json:"skills"`
	Records  []Record          `json:"records"`
	Evidence map[string]string `json:"evidence"`
}

func (Extraction) Stage() string { return "extract" }

// JDProfile separates job description requirements by confidence.
type JDProfile struct {
	Mandatory skills.Set        `json:"mandatory"`
	Optional  skills.Set        `json:"optional"`
	Evidence  map[string]string `json:"evidence"`
}

// All returns the union of mandatory and optional skills.
func (p JDProfile) All() skills.Set {
	out := p.Mandatory.Clone()
	for name := range p.Optional {
		out[name] = struct{}{}
	}
	return out
}

// ExtractSkills runs the matcher and applies the policy.
func ExtractSkills(ctx context.Context, m *Matcher, text string, policy Policy) Extraction {
	return policy.Apply(m.Extract(ctx, text))
}

// Apply filters records by confidence and applies the cap. Records are
// expected in the order Extract returns them.
func (p Policy) Apply(records []Record) Extraction {
	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.Confidence >= p.ConfidenceThreshold {
			kept = append(kept, rec)
		}
	}
	if p.MaxSkills > 0 && len(kept) > p.MaxSkills {
		kept = kept[:p.MaxSkills]
	}

	out := Extraction{
		Skills:   make(skills.Set, len(kept)),
		Records:  kept,
		Evidence: make(map[string]string, len(kept)),
	}
	for _, rec := range kept {
		out.Skills[rec.Skill] = struct{}{}
		out.Evidence[rec.Skill] = rec.Evidence
	}
	return out
}

// Profile splits an extraction into mandatory and optional requirements.
func (p Policy) Profile(e Extraction) JDProfile {
	profile := JDProfile{
		Mandatory: make(skills.Set),
		Optional:  make(skills.Set),
		Evidence:  e.Evidence,
	}
	for _, rec := range e.Records {
		if rec.Confidence >= p.MandatoryThreshold {
			profile.Mandatory[rec.Skill] = struct{}{}
		} else {
			profile.Optional[rec.Skill] = struct{}{}
		}
	}
	return profile
}

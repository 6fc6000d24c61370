package scoring

import (
	"math"

	"github.com/spigell/skillfit/internal/skills"
	"github.com/spigell/skillfit/internal/utils"
)

// Alignment weights for job description matching.
const (
	MandatoryWeight = 0.7
	OptionalWeight  = 0.2
	DepthWeight     = 0.1

	depthSaturation         = 20.0
	minMandatoryCoverage    = 0.5
	strongMatchThreshold    = 75.0
	potentialMatchThreshold = 60.0
)

// Alignment decisions.
const (
	AlignmentReject    = "Reject"
	AlignmentStrong    = "Strong Match"
	AlignmentPotential = "Potential Match"
	AlignmentWeak      = "Weak Match"
)

// Alignment is a weighted fit against a job description split into
// mandatory and optional requirements.
type Alignment struct {
	Score             float64  `json:"alignment_score"`
	MandatoryCoverage float64  `json:"mandatory_coverage"`
	OptionalCoverage  float64  `json:"optional_coverage"`
	Depth             float64  `json:"experience_depth"`
	MissingMandatory  []string `json:"missing_mandatory"`
	MatchedOptional   []string `json:"matched_optional"`
	Decision          string   `json:"decision"`
}

func (Alignment) Stage() string { return "alignment" }

// Align scores a resume against mandatory and optional requirements. A
// candidate covering less than half of the mandatory skills is rejected
// regardless of the weighted score.
func Align(resume, mandatory, optional skills.Set) Alignment {
	mandatoryCov := ratio(resume.Intersect(mandatory).Len(), mandatory.Len())
	optionalCov := ratio(resume.Intersect(optional).Len(), optional.Len())
	depth := math.Min(float64(resume.Len())/depthSaturation, 1)

	score := (mandatoryCov*MandatoryWeight + optionalCov*OptionalWeight + depth*DepthWeight) * 100

	a := Alignment{
		Score:             utils.Round(score, 2),
		MandatoryCoverage: utils.Round(mandatoryCov, 3),
		OptionalCoverage:  utils.Round(optionalCov, 3),
		Depth:             utils.Round(depth, 3),
		MissingMandatory:  mandatory.Difference(resume).Sorted(),
		MatchedOptional:   resume.Intersect(optional).Sorted(),
	}

	switch {
	case mandatoryCov < minMandatoryCoverage:
		a.Decision = AlignmentReject
	case a.Score >= strongMatchThreshold:
		a.Decision = AlignmentStrong
	case a.Score >= potentialMatchThreshold:
		a.Decision = AlignmentPotential
	default:
		a.Decision = AlignmentWeak
	}
	return a
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

package calibration

import (
	"fmt"
	"math"

	"github.com/spigell/skillfit/internal/utils"
)

type Uncertainty string

const (
	UncertaintyLow    Uncertainty = "LOW"
	UncertaintyMedium Uncertainty = "MEDIUM"
	UncertaintyHigh   Uncertainty = "HIGH"
)

type Confidence struct {
	Confidence  float64     `json:"confidence"`
	Uncertainty Uncertainty `json:"uncertainty_level"`
	Abstain     bool        `json:"abstain"`
	Explanation string      `json:"explanation"`
}

func (Confidence) Stage() string { return "confidence" }

// EstimateConfidence weighs the shift introduced by bias adjustment against
// how much of the role is covered. Abstain marks decisions that should not
// be acted on without a human.
func EstimateConfidence(raw, adjusted, coverage float64, band Band) Confidence {
	gap := math.Abs(raw-adjusted) / 100
	confidence := math.Max(0, 1-(0.5*gap+0.5*(1-coverage)))

	var (
		level   Uncertainty
		abstain bool
	)
	switch {
	case confidence >= 0.75:
		level = UncertaintyLow
	case confidence >= 0.45:
		level = UncertaintyMedium
		abstain = band == Hire
	default:
		level = UncertaintyHigh
		abstain = true
	}

	return Confidence{
		Confidence:  utils.Round(confidence, 3),
		Uncertainty: level,
		Abstain:     abstain,
		Explanation: fmt.Sprintf(
			"Confidence is %s due to %s%% skill coverage and %s%% bias adjustment shift.",
			format(utils.Round(confidence, 2)), format(math.Round(coverage*100)), format(math.Round(gap*100)),
		),
	}
}

package calibration

import (
	"fmt"
	"strconv"

	"github.com/spigell/skillfit/internal/utils"
	"github.com/spigell/skillfit/internal/whatif"
)

type OfferBand string

const (
	NearCertain OfferBand = "NEAR_CERTAIN"
	Strong      OfferBand = "STRONG"
	Uncertain   OfferBand = "UNCERTAIN"
	Low         OfferBand = "LOW"
	VeryLow     OfferBand = "VERY_LOW"
)

const (
	recruiterNoise = 0.08
	interviewNoise = 0.12
)

// Funnel stage names used in Offer.Breakdown.
const (
	StageResumeScreen       = "resume_screen"
	StageRecruiterReview    = "recruiter_review"
	StageTechnicalInterview = "technical_interview"
	StageFinalDecision      = "final_decision"
)

type Offer struct {
	Min         float64            `json:"min_probability"`
	Max         float64            `json:"max_probability"`
	Expected    float64            `json:"expected_probability"`
	Band        OfferBand          `json:"risk_band"`
	Breakdown   map[string]float64 `json:"funnel_breakdown"`
	Explanation string             `json:"explanation"`
}

func (Offer) Stage() string { return "offer" }

// EstimateOffer walks a four stage hiring funnel. Recruiter and interview
// stages carry a symmetric noise band which yields the min and max bounds.
func EstimateOffer(score, threshold float64, stability whatif.Stability, review bool) Offer {
	screen := 0.65
	if score >= threshold {
		screen = 0.95
	}

	recruiter := 0.45
	switch {
	case score >= threshold+10:
		recruiter = 0.85
	case score >= threshold:
		recruiter = 0.70
	}

	technical := 0.50
	switch stability {
	case whatif.Robust:
		technical = 0.80
	case whatif.Moderate:
		technical = 0.65
	}

	final := 0.75
	if review {
		final = 0.60
	}

	low := screen * unit(recruiter-recruiterNoise) * unit(technical-interviewNoise) * final
	high := screen * unit(recruiter+recruiterNoise) * unit(technical+interviewNoise) * final
	expected := utils.Round((low+high)/2, 3)

	reviewText := "not required"
	if review {
		reviewText = "required"
	}

	return Offer{
		Min:      utils.Round(low, 3),
		Max:      utils.Round(high, 3),
		Expected: expected,
		Band:     offerBand(expected),
		Breakdown: map[string]float64{
			StageResumeScreen:       screen,
			StageRecruiterReview:    recruiter,
			StageTechnicalInterview: technical,
			StageFinalDecision:      final,
		},
		Explanation: fmt.Sprintf(
			"The estimated offer probability is driven by a score of %s, with a hiring threshold of %s. "+
				"The decision stability is %s, and human review is %s. "+
				"Recruiter and interview-stage variability introduce uncertainty, resulting in an expected offer probability of %s%%.",
			format(score), format(threshold), stability, reviewText, format(utils.Round(expected*100, 1)),
		),
	}
}

func offerBand(expected float64) OfferBand {
	switch {
	case expected >= 0.80:
		return NearCertain
	case expected >= 0.60:
		return Strong
	case expected >= 0.40:
		return Uncertain
	case expected >= 0.20:
		return Low
	default:
		return VeryLow
	}
}

func unit(v float64) float64 { return utils.Clamp(v, 0, 1) }

func format(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

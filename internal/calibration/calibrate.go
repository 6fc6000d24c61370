// Package calibration turns bias-adjusted scores into hiring bands, offer
// probabilities and confidence estimates.
package calibration

import "github.com/spigell/skillfit/internal/utils"

type Band string

const (
	StrongHire Band = "STRONG_HIRE"
	Hire       Band = "HIRE"
	Borderline Band = "BORDERLINE"
	WeakFit    Band = "WEAK_FIT"
	Reject     Band = "REJECT"
)

type Result struct {
	RawScore        float64 `json:"raw_score"`
	CalibratedScore float64 `json:"calibrated_score"`
	Band            Band    `json:"risk_band"`
	Recommendation  string  `json:"hiring_recommendation"`
	HumanReview     bool    `json:"human_review_required"`
}

func (Result) Stage() string { return "calibration" }

type policy struct {
	floor          float64
	band           Band
	recommendation string
	review         bool
}

//nolint:gochecknoglobals
var policies = []policy{
	{85, StrongHire, "Fast-track candidate to final interview.", false},
	{70, Hire, "Proceed with standard interview loop.", false},
	{55, Borderline, "Senior recruiter or hiring manager review required.", true},
	{40, WeakFit, "Do not proceed unless exceptional non-technical evidence exists.", true},
}

// Calibrate maps a score onto a band. The score is rounded to two decimals
// before the band floors are compared.
func Calibrate(score float64) Result {
	score = utils.Round(score, 2)

	for _, p := range policies {
		if score >= p.floor {
			return Result{
				RawScore:        score,
				CalibratedScore: score,
				Band:            p.band,
				Recommendation:  p.recommendation,
				HumanReview:     p.review,
			}
		}
	}

	return Result{
		RawScore:        score,
		CalibratedScore: score,
		Band:            Reject,
		Recommendation:  "Reject candidate at screening stage.",
	}
}

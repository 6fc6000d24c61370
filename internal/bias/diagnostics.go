package bias

import (
	"math"

	"github.com/spigell/skillfit/internal/scoring"
	"github.com/spigell/skillfit/internal/utils"
)

const diagnosticsDisclaimer = "Bias diagnostics are indicative signals only. No protected attributes are used."

// RoleAdvantage is one row of the role advantage table.
type RoleAdvantage struct {
	Role           string  `json:"role"`
	Score          float64 `json:"match_score"`
	RequiredSkills int     `json:"required_skill_count"`
}

// Diagnostics are recruiter-facing bias signals over a multi-role comparison.
// They never influence a decision.
type Diagnostics struct {
	SkillCount     int             `json:"skill_count"`
	AverageScore   float64         `json:"average_match_score"`
	DiversityRatio float64         `json:"skill_diversity_ratio"`
	Correlation    *float64        `json:"correlation_required_skills_vs_score"`
	Roles          []RoleAdvantage `json:"table,omitempty"`
	Disclaimer     string          `json:"disclaimer"`
}

func (Diagnostics) Stage() string { return "diagnostics" }

// Diagnose computes the signals for the extracted skill names (duplicates
// allowed) and the per-role reports. Correlation is nil when it is undefined.
func Diagnose(extracted []string, reports []scoring.Report) Diagnostics {
	unique := make(map[string]struct{}, len(extracted))
	for _, name := range extracted {
		unique[name] = struct{}{}
	}

	d := Diagnostics{
		SkillCount:     len(extracted),
		DiversityRatio: utils.Round(float64(len(unique))/math.Max(float64(len(extracted)), 1), 2),
		Disclaimer:     diagnosticsDisclaimer,
	}

	if len(reports) == 0 {
		return d
	}

	scores := make([]float64, 0, len(reports))
	sizes := make([]float64, 0, len(reports))
	for _, r := range reports {
		required := len(r.Matched) + len(r.Missing)
		d.Roles = append(d.Roles, RoleAdvantage{Role: r.Role, Score: r.Score, RequiredSkills: required})
		scores = append(scores, r.Score)
		sizes = append(sizes, float64(required))
	}

	d.AverageScore = utils.Round(mean(scores), 2)
	if corr, ok := Pearson(scores, sizes); ok {
		c := utils.Round(corr, 3)
		d.Correlation = &c
	}

	return d
}

// Pearson returns the correlation coefficient of x and y. It reports false
// for mismatched lengths, fewer than two points or a constant series.
func Pearson(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}

	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}

	return sxy / math.Sqrt(sxx*syy), true
}

// SafeVariance is the population variance, or 0 for fewer than two values.
func SafeVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}

// SafeCovariance is the sample covariance of x and y, or 0 when either series
// has fewer than two values.
func SafeCovariance(x, y []float64) float64 {
	if len(x) < 2 || len(y) < 2 || len(x) != len(y) {
		return 0
	}
	mx, my := mean(x), mean(y)
	var sum float64
	for i := range x {
		sum += (x[i] - mx) * (y[i] - my)
	}
	return sum / float64(len(x)-1)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

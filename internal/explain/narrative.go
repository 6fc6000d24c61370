// Package explain renders recruiter and executive facing text from the
// structured results of an evaluation.
package explain

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spigell/skillfit/internal/bias"
	"github.com/spigell/skillfit/internal/skills"
	"github.com/spigell/skillfit/internal/utils"
)

const narrativeListLimit = 6

type Explanation struct {
	FinalScore float64         `json:"final_score"`
	BaseScore  float64         `json:"base_score"`
	Adjustment float64         `json:"bias_adjustment"`
	Matched    []string        `json:"matched_skills"`
	Missing    []string        `json:"missing_skills"`
	BiasFlags  map[string]bool `json:"bias_flags"`
	Narrative  string          `json:"narrative"`
}

func (Explanation) Stage() string { return "explanation" }

// Explain compares the resume and role sets and narrates the scores.
func Explain(base, adjusted float64, resume, role skills.Set, flags map[string]bool) Explanation {
	matched := resume.Intersect(role).Sorted()
	missing := role.Difference(resume).Sorted()

	return Explanation{
		FinalScore: adjusted,
		BaseScore:  base,
		Adjustment: utils.Round(adjusted-base, 2),
		Matched:    matched,
		Missing:    missing,
		BiasFlags:  flags,
		Narrative:  Narrative(base, adjusted, matched, missing, flags),
	}
}

// Narrative is the plain-language account of a score. Skill lists are cut to
// their first six entries.
func Narrative(base, final float64, matched, missing []string, flags map[string]bool) string {
	parts := []string{
		fmt.Sprintf("The candidate initially scored %s%% based on direct skill alignment.", num(base)),
	}

	if len(matched) > 0 {
		parts = append(parts, fmt.Sprintf("Strong alignment was observed in: %s.", strings.Join(head(matched, narrativeListLimit), ", ")))
	}
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("Skill gaps identified include: %s.", strings.Join(head(missing, narrativeListLimit), ", ")))
	}
	if active := bias.ActiveFlags(flags); len(active) > 0 {
		parts = append(parts, fmt.Sprintf(
			"The score was adjusted by +%s%% due to detected bias risks (%s), ensuring fairness.",
			num(utils.Round(final-base, 2)), strings.Join(active, ", "),
		))
	}

	parts = append(parts, fmt.Sprintf("The final match score is %s%%, reflecting a bias-aware evaluation.", num(final)))

	return strings.Join(parts, " ")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// title upper-cases the first letter of every word and leaves the rest, so
// acronyms such as "AI" survive. A Caser keeps state and is not shared.
func title(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}

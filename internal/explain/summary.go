package explain

import (
	"fmt"
	"strings"
)

// RunSummary is the recruiter summary shown for a single evaluation.
func RunSummary(score float64, matched, missing []string) string {
	matchedText := "No strong matches identified"
	if len(matched) > 0 {
		matchedText = strings.Join(matched, ", ")
	}

	missingText := "No critical gaps detected"
	if len(missing) > 0 {
		missingText = strings.Join(missing, ", ")
	}

	return "Recruiter Skill Match Summary\n\n" +
		fmt.Sprintf("Overall Match Score: %s%%\n\n", num(score)) +
		fmt.Sprintf("Matched Skills: %s\n\n", matchedText) +
		fmt.Sprintf("Missing Skills: %s\n\n", missingText) +
		"This score represents skill coverage only and should be interpreted as a decision-support signal."
}

// DegenerateSummary explains why no score could be computed.
func DegenerateSummary(reason string) string {
	return fmt.Sprintf("Unable to compute match score. Reason: %s.", reason)
}

package panel

import (
	"fmt"
	"strconv"

	"github.com/spigell/skillfit/internal/utils"
)

type Decision struct {
	Decision   Vote              `json:"panel_decision"`
	Confidence float64           `json:"panel_confidence"`
	Votes      map[string]Vote   `json:"votes"`
	Members    []PersonaDecision `json:"members"`
	Rationale  string            `json:"rationale"`
}

func (Decision) Stage() string { return "panel" }

// Aggregate takes a strict majority of PROCEED votes to proceed. Without a
// single PROCEED vote the panel rejects; anything in between is a hold.
func Aggregate(decisions []PersonaDecision) (Decision, error) {
	n := len(decisions)
	if n == 0 {
		return Decision{}, ErrEmptyPanel
	}

	votes := make(map[string]Vote, n)
	proceed := 0
	var sum float64
	for _, d := range decisions {
		votes[d.Persona] = d.Decision
		sum += d.OfferProbability
		if d.Decision == Proceed {
			proceed++
		}
	}

	confidence := utils.Round(sum/float64(n), 2)

	outcome := Hold
	switch {
	case 2*proceed > n:
		outcome = Proceed
	case proceed == 0:
		outcome = Reject
	}

	return Decision{
		Decision:   outcome,
		Confidence: confidence,
		Votes:      votes,
		Members:    decisions,
		Rationale: fmt.Sprintf("%d of %d panel members recommend proceeding. Panel confidence is %s.",
			proceed, n, strconv.FormatFloat(confidence, 'f', -1, 64)),
	}, nil
}

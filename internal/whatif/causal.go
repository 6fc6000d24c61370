package whatif

import (
	"math"
	"sort"

	"github.com/spigell/skillfit/internal/skills"
	"github.com/spigell/skillfit/internal/utils"
)

const maxDrivers = 5

type DriverAction string

const (
	ActionAdd    DriverAction = "ADD"
	ActionRemove DriverAction = "REMOVE"
)

type Driver struct {
	Skill    string       `json:"skill"`
	Action   DriverAction `json:"action"`
	Impact   float64      `json:"impact"`
	NewScore float64      `json:"new_score"`
}

type CausalReport struct {
	BaseScore   float64  `json:"base_score"`
	TopDrivers  []Driver `json:"top_drivers"`
	Explanation string   `json:"explanation"`
}

func (CausalReport) Stage() string { return "causal" }

// CausalImpact ranks the marginal effect of adding each missing skill and
// removing each present one.
func (a *Analyzer) CausalImpact(resume, role skills.Set, base float64) CausalReport {
	drivers := make([]Driver, 0, role.Len()+resume.Len())

	collect := func(m mode, action DriverAction, order []string) {
		for _, v := range a.perturb(m, resume, role, order) {
			drivers = append(drivers, Driver{
				Skill:    v.skill,
				Action:   action,
				Impact:   utils.Round(v.score-base, 2),
				NewScore: utils.Round(v.score, 2),
			})
		}
	}
	collect(modeAdd, ActionAdd, role.Difference(resume).Sorted())
	collect(modeRemove, ActionRemove, resume.Sorted())

	sort.SliceStable(drivers, func(i, j int) bool {
		return math.Abs(drivers[i].Impact) > math.Abs(drivers[j].Impact)
	})
	if len(drivers) > maxDrivers {
		drivers = drivers[:maxDrivers]
	}

	return CausalReport{
		BaseScore:   utils.Round(base, 2),
		TopDrivers:  drivers,
		Explanation: "Skills are ranked by marginal impact on the decision score using counterfactual perturbations.",
	}
}

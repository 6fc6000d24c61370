package whatif

import (
	"math"
	"sort"
)

type Zone string

const (
	ZoneCritical Zone = "CRITICAL"
	ZoneWarning  Zone = "WARNING"
	ZoneSafe     Zone = "SAFE"

	warningMargin = 10.0
)

type HeatmapCell struct {
	Skill            string  `json:"skill"`
	Impact           float64 `json:"impact"`
	Zone             Zone    `json:"zone"`
	CrossesThreshold bool    `json:"crosses_threshold"`
}

type Heatmap struct {
	Threshold   float64       `json:"threshold"`
	Cells       []HeatmapCell `json:"cells"`
	Explanation string        `json:"explanation"`
}

func (Heatmap) Stage() string { return "heatmap" }

// BuildHeatmap places every simulated skill into a zone by how close its new
// score lands to threshold.
func BuildHeatmap(sim SimulationReport, threshold float64) Heatmap {
	cells := make([]HeatmapCell, 0, len(sim.Simulations))
	for _, s := range sim.Simulations {
		zone := ZoneSafe
		switch {
		case s.NewScore >= threshold:
			zone = ZoneCritical
		case s.NewScore >= threshold-warningMargin:
			zone = ZoneWarning
		}

		cells = append(cells, HeatmapCell{
			Skill:            s.Skill,
			Impact:           s.Delta,
			Zone:             zone,
			CrossesThreshold: s.Change == CrossesThreshold,
		})
	}

	sort.SliceStable(cells, func(i, j int) bool {
		return math.Abs(cells[i].Impact) > math.Abs(cells[j].Impact)
	})

	return Heatmap{
		Threshold: threshold,
		Cells:     cells,
		Explanation: "This heatmap shows how individual skill changes affect the hiring decision boundary. " +
			"Skills in the CRITICAL zone can independently flip the hire decision and should be prioritized by recruiters.",
	}
}

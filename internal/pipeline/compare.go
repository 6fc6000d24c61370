package pipeline

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/skillfit/internal/scoring"
	"github.com/spigell/skillfit/internal/skills"
)

// Compare scores resume against every role and orders the reports by score,
// best first. Ties keep the order roles were given in.
func Compare(resume skills.Set, roles []scoring.RoleProfile, parallelism int) []scoring.Report {
	reports := make([]scoring.Report, len(roles))
	score := func(i int) {
		reports[i] = scoring.Score(resume, roles[i].Skills)
		reports[i].Role = roles[i].Name
	}

	if parallelism <= 1 || len(roles) < 2 {
		for i := range roles {
			score(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(parallelism)
		for i := range roles {
			g.Go(func() error {
				score(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Score > reports[j].Score
	})
	return reports
}

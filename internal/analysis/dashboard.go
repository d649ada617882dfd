package analysis

import (
	"fmt"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/models"
)

// Dashboard reshapes a trajectory for an interactive view.
//
// The trajectory is resized to hours*60 rows, truncating or repeating it from
// the start, and renumbered from minute 0. Each adjusted temperature is then
// pulled toward preferred by NudgeRate and clamped to [ClampMin, ClampMax].
// The input slice is not modified.
func Dashboard(records []models.TrajectoryRecord, preferred float64, hours int, cfg *config.AcsimConfig) ([]models.TrajectoryRecord, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if cfg == nil {
		cfg = config.Default()
	}
	a := cfg.Analysis

	if preferred < a.ClampMin || preferred > a.ClampMax {
		return nil, fmt.Errorf("preferred temperature %g outside [%g, %g]", preferred, a.ClampMin, a.ClampMax)
	}
	if hours < 1 || hours > a.MaxHours {
		return nil, fmt.Errorf("hours %d outside [1, %d]", hours, a.MaxHours)
	}

	n := hours * 60
	out := make([]models.TrajectoryRecord, n)
	for i := range out {
		r := records[i%len(records)]
		r.Time = i
		adj := r.AdjustedTemp - (r.AdjustedTemp-preferred)*a.NudgeRate
		r.AdjustedTemp = min(max(adj, a.ClampMin), a.ClampMax)
		out[i] = r
	}
	return out, nil
}

package service

import "math"

// LevelStatus is the traveler-level view of a user's lifetime points, shown
// on the profile next to badge progress.
type LevelStatus struct {
	Level         int     `json:"level"`
	LevelName     string  `json:"level_name"`
	NextLevelName string  `json:"next_level_name"`
	CurrentPoints int     `json:"current_points"`
	TargetPoints  int     `json:"target_points"`
	Progress      float64 `json:"progress"`
}

// Level thresholds on total accumulated points. Levels never demote: the
// balance they derive from only matters at the moment it is written. A spend
// that lowers the balance recomputes the level with it; product accepted
// that given how low the thresholds sit.
const (
	pointsLegend      = 20000 // level 6
	pointsPathfinder  = 8000  // level 5
	pointsVoyager     = 3000  // level 4
	pointsTrailblazer = 600   // level 3
	pointsExplorer    = 100   // level 2
)

var levelNames = map[int]string{
	1: "Wanderer",
	2: "Explorer",
	3: "Trailblazer",
	4: "Voyager",
	5: "Pathfinder",
	6: "Legend",
}

// LevelFor maps a point balance to a level. Used inside the ledger-append
// transaction so user.level always matches user.total_points.
func LevelFor(totalPoints int) int {
	switch {
	case totalPoints >= pointsLegend:
		return 6
	case totalPoints >= pointsPathfinder:
		return 5
	case totalPoints >= pointsVoyager:
		return 4
	case totalPoints >= pointsTrailblazer:
		return 3
	case totalPoints >= pointsExplorer:
		return 2
	default:
		return 1
	}
}

func LevelName(level int) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return levelNames[1]
}

// StatusFor expands a balance into the profile view.
func StatusFor(totalPoints int) LevelStatus {
	level := LevelFor(totalPoints)
	status := LevelStatus{
		Level:         level,
		LevelName:     LevelName(level),
		CurrentPoints: totalPoints,
	}

	targets := []int{0, pointsExplorer, pointsTrailblazer, pointsVoyager, pointsPathfinder, pointsLegend}
	if level >= 6 {
		status.NextLevelName = "Max Level"
		status.TargetPoints = pointsLegend
		status.Progress = 100
		return status
	}

	status.NextLevelName = LevelName(level + 1)
	status.TargetPoints = targets[level]
	if status.TargetPoints > 0 {
		status.Progress = float64(totalPoints) / float64(status.TargetPoints) * 100
	}
	status.Progress = math.Round(status.Progress*100) / 100

	return status
}

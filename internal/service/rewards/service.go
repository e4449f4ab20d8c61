package rewards

import (
	"context"
	"fmt"

	"github.com/mindhaven/backend/internal/model/wellness"
	"github.com/mindhaven/backend/internal/store"
)

// levels in ascending order of the points needed to pass them.
var levels = []struct {
	threshold int
	level     int
	name      string
}{
	{threshold: 50, level: 1, name: "Wellness Newcomer"},
	{threshold: 150, level: 2, name: "Mindful Explorer"},
	{threshold: 300, level: 3, name: "Wellness Warrior"},
	{threshold: 500, level: 4, name: "Mindfulness Master"},
}

const topLevelName = "Zen Champion"

// Summary aggregates a user's point ledger for display.
type Summary struct {
	Total     int                   `json:"total"`
	Breakdown map[string]int        `json:"breakdown"`
	Level     int                   `json:"level"`
	LevelName string                `json:"levelName"`
	NextLevel int                   `json:"nextLevel,omitempty"`
	Recent    []wellness.PointAward `json:"recent"`
}

// recentLimit caps how many ledger entries the summary carries.
const recentLimit = 10

// Service reads the append-only point ledger; it never writes to it.
type Service struct {
	store store.Store
}

// NewService wires the rewards reader to the store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Summarize folds the user's ledger into total, per-source breakdown and
// level standing.
func (s *Service) Summarize(ctx context.Context, userID string) (Summary, error) {
	awards, err := s.store.ListPointAwards(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load point awards: %w", err)
	}

	summary := Summary{Breakdown: make(map[string]int)}
	for _, award := range awards {
		summary.Total += award.Points
		summary.Breakdown[award.Source] += award.Points
	}

	summary.Level, summary.LevelName, summary.NextLevel = levelFor(summary.Total)

	if len(awards) > recentLimit {
		awards = awards[:recentLimit]
	}
	summary.Recent = awards

	return summary, nil
}

func levelFor(total int) (int, string, int) {
	for _, candidate := range levels {
		if total < candidate.threshold {
			return candidate.level, candidate.name, candidate.threshold
		}
	}
	return len(levels) + 1, topLevelName, 0
}

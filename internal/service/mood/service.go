package mood

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/mindhaven/backend/internal/model/wellness"
	"github.com/mindhaven/backend/internal/store"
)

// moodTrackingPoints is awarded once per logged entry.
const moodTrackingPoints = 10

var ErrInvalidMood = errors.New("mood value must be between 1 and 5")

// options maps the five-point mood scale to its display label and emoji.
var options = map[int]struct {
	label string
	emoji string
}{
	1: {label: "Very Low", emoji: "😢"},
	2: {label: "Low", emoji: "🙁"},
	3: {label: "Okay", emoji: "😐"},
	4: {label: "Good", emoji: "🙂"},
	5: {label: "Great", emoji: "😄"},
}

// Service records mood check-ins and reports mood history.
type Service struct {
	store store.Store
}

// NewService wires the mood tracker to the store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Log persists one mood entry and credits the mood-tracking award. The award
// is best-effort: a ledger failure does not invalidate the entry.
func (s *Service) Log(ctx context.Context, userID string, value int, note string) (wellness.MoodEntry, error) {
	option, ok := options[value]
	if !ok {
		return wellness.MoodEntry{}, ErrInvalidMood
	}

	entry, err := s.store.AppendMoodEntry(ctx, userID, value, option.label, option.emoji, note)
	if err != nil {
		return wellness.MoodEntry{}, fmt.Errorf("failed to persist mood entry: %w", err)
	}

	if _, err := s.store.AppendPointAward(ctx, userID, moodTrackingPoints,
		wellness.SourceMoodTracking, "Daily mood check-in"); err != nil {
		log.Printf("[mood] award mood points failed: %v", err)
	}

	return entry, nil
}

// History is the mood log with its running average, newest first.
type History struct {
	Entries []wellness.MoodEntry `json:"entries"`
	Average float64              `json:"average"`
}

// History returns the user's mood entries and average mood value.
func (s *Service) History(ctx context.Context, userID string) (History, error) {
	entries, err := s.store.ListMoodEntries(ctx, userID)
	if err != nil {
		return History{}, fmt.Errorf("failed to load mood entries: %w", err)
	}

	history := History{Entries: entries}
	if len(entries) > 0 {
		sum := 0
		for _, entry := range entries {
			sum += entry.MoodValue
		}
		average := float64(sum) / float64(len(entries))
		history.Average = math.Round(average*10) / 10
	}

	return history, nil
}

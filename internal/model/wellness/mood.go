package wellness

import "time"

// MoodEntry records a single self-reported mood check-in.
type MoodEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MoodValue int       `json:"moodValue"`
	MoodLabel string    `json:"moodLabel"`
	MoodEmoji string    `json:"moodEmoji"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

package wellness

import "time"

// Point award sources recognised by the service.
const (
	SourceChatSession  = "chat_session"
	SourceMoodTracking = "mood_tracking"
)

// PointAward is one append-only ledger entry crediting a user.
// A user's total is the sum over all of their awards.
type PointAward struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Points      int       `json:"points"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

package chat

import "time"

// DefaultTitle is the placeholder used until the first exchange names the thread.
const DefaultTitle = "New Conversation"

// Conversation is a titled message thread owned by a single user.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

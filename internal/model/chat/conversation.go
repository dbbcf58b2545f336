package chat

import "time"

// Conversation is a titled, user-owned thread of messages. The owner is set
// at creation and never changes; LastMessageAt moves forward whenever either
// party appends a message.
type Conversation struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Title         string    `json:"title"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

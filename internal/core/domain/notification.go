package domain

import "time"

// Notification is a per-user mailbox entry created as a side effect of
// someone else's action on the user's content.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) OwnerID() string { return n.UserID }

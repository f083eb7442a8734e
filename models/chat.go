package models

import "time"

// MaxChatMessages bounds the persisted clan chat.
const MaxChatMessages = 100

type ChatMessage struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

func (m *ChatMessage) EntityID() string      { return m.ID }
func (m *ChatMessage) SetEntityID(id string) { m.ID = id }

// PresenceStatus values stored under user_<id>_status.
const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
)

type Presence struct {
	UserID   string     `json:"userId"`
	Status   string     `json:"status"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

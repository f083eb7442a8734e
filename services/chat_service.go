package services

import (
	"fmt"
	"strings"
	"time"

	"clan-portal/models"
	"clan-portal/store"
)

const ChatTypeMessage = "message"

// ChatService keeps the clan chat. The backing store is created with a
// capacity of models.MaxChatMessages, so old messages fall off on post.
type ChatService struct {
	messages *store.Store[*models.ChatMessage]
	now      func() time.Time
}

func NewChatService(messages *store.Store[*models.ChatMessage]) *ChatService {
	return &ChatService{messages: messages, now: time.Now}
}

func (s *ChatService) Post(user, message string) (*models.ChatMessage, error) {
	user = strings.TrimSpace(user)
	message = strings.TrimSpace(message)
	if user == "" || message == "" {
		return nil, fmt.Errorf("chat user and message are required: %w", ErrValidation)
	}
	return s.messages.Add(&models.ChatMessage{
		User:      user,
		Message:   message,
		Timestamp: s.now(),
		Type:      ChatTypeMessage,
	})
}

// Recent returns up to limit of the newest messages, oldest first.
func (s *ChatService) Recent(limit int) []*models.ChatMessage {
	all := s.messages.All()
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all
}

package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"clan-portal/events"
	"clan-portal/models"
	"clan-portal/storage"
)

// PresenceService tracks who is online. State lives under the plain string
// keys user_<id>_status and user_<id>_lastSeen.
type PresenceService struct {
	mu      sync.RWMutex
	backend storage.Backend
	bus     *events.Bus
	online  map[string]bool
	now     func() time.Time
}

func NewPresenceService(backend storage.Backend, bus *events.Bus) *PresenceService {
	return &PresenceService{
		backend: backend,
		bus:     bus,
		online:  make(map[string]bool),
		now:     time.Now,
	}
}

func statusKey(userID string) string   { return "user_" + userID + "_status" }
func lastSeenKey(userID string) string { return "user_" + userID + "_lastSeen" }

func (s *PresenceService) SetOnline(userID string) error {
	return s.set(userID, models.PresenceOnline)
}

func (s *PresenceService) SetOffline(userID string) error {
	return s.set(userID, models.PresenceOffline)
}

func (s *PresenceService) set(userID, status string) error {
	if userID == "" {
		return fmt.Errorf("user id is required: %w", ErrValidation)
	}
	userID = strings.Clone(userID)
	now := s.now().UTC()

	s.mu.Lock()
	if err := s.backend.Set(statusKey(userID), []byte(status)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("presence %s: %w: %w", userID, ErrPersistence, err)
	}
	if err := s.backend.Set(lastSeenKey(userID), []byte(now.Format(time.RFC3339Nano))); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("presence %s: %w: %w", userID, ErrPersistence, err)
	}
	if status == models.PresenceOnline {
		s.online[userID] = true
	} else {
		delete(s.online, userID)
	}
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(events.Event{
			Category: events.ProfileChanged,
			Kind:     "presence",
			ID:       userID,
			Payload:  models.Presence{UserID: userID, Status: status, LastSeen: &now},
		})
	}
	return nil
}

// Get reads a user's presence. Users never seen are offline.
func (s *PresenceService) Get(userID string) (models.Presence, error) {
	p := models.Presence{UserID: userID, Status: models.PresenceOffline}

	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.backend.Get(statusKey(userID))
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		return p, nil
	case err != nil:
		return p, fmt.Errorf("presence %s: %w: %w", userID, ErrPersistence, err)
	}
	p.Status = string(raw)

	raw, err = s.backend.Get(lastSeenKey(userID))
	if err == nil {
		if t, perr := time.Parse(time.RFC3339Nano, string(raw)); perr == nil {
			p.LastSeen = &t
		}
	}
	return p, nil
}

// Online lists the users marked online by this process, sorted.
func (s *PresenceService) Online() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.online))
	for id := range s.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// workers/simulation.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"clan-portal/events"
	"clan-portal/models"
	"clan-portal/services"
	"clan-portal/utils"
)

const (
	ClanActivityTask      = "clan-activity"
	TournamentSignupsTask = "tournament-signups"
	UserStatsTask         = "user-stats"
	LiveNotificationsTask = "live-notifications"
	ActivityStreamTask    = "activity-stream"
	ClanChatTask          = "clan-chat"
	LiveCountersTask      = "live-counters"
	VoiceChannelsTask     = "voice-channels"
)

// Notification is the payload of live-notification events.
type Notification struct {
	Type    string `json:"type"`
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

var notifications = []Notification{
	{Type: "tournament", Icon: "trophy", Message: "New tournament starting soon: Weekly Showdown"},
	{Type: "clan", Icon: "users", Message: "Your clan has been challenged to a match!"},
	{Type: "message", Icon: "envelope", Message: "New message from Clan Leader"},
	{Type: "achievement", Icon: "star", Message: "Achievement unlocked: First Blood!"},
}

var communityActivity = []string{
	"Neon Ninjas clan just won a tournament!",
	"New member joined Cyber Strikers",
	"Apex Predators reached Master rank",
	"Weekly Valorant tournament starting in 1 hour",
	`New clan "Digital Dragons" created`,
}

var (
	chatUsers    = []string{"CyberNinja", "NeonGhost", "DigitalWolf", "ByteHunter"}
	chatMessages = []string{
		"Anyone for some ranked games?",
		"Great match everyone!",
		"Tournament practice starting in 30 mins",
		"New strategy discussion in #tactics",
		"Welcome to our new members!",
	}
	simulatedGames = []string{"valorant", "cod", "apex", "lol"}
)

// Deps are the services the simulation drives.
type Deps struct {
	Clans       *services.ClanService
	Tournaments *services.TournamentService
	Profiles    *services.ProfileService
	Presence    *services.PresenceService
	Chat        *services.ChatService
	Feed        *services.ActivityFeed
	Counters    *services.LiveCounters
	Voice       *services.VoiceChannels
	Bus         *events.Bus
	Log         *slog.Logger
}

// Simulation produces the portal's simulated live activity. Each method is a
// single tick of one task.
type Simulation struct {
	Deps

	// mu guards rng, which is not safe for concurrent use.
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulation(deps Deps, rng *rand.Rand) *Simulation {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Simulation{Deps: deps, rng: rng}
}

// Tasks returns the simulation tasks with their default intervals.
func (s *Simulation) Tasks() []Task {
	return []Task{
		{Name: ClanActivityTask, Interval: 8 * time.Second, Run: s.ClanActivity},
		{Name: TournamentSignupsTask, Interval: 12 * time.Second, Run: s.TournamentSignups},
		{Name: UserStatsTask, Interval: 30 * time.Second, Run: s.UserStats},
		{Name: LiveNotificationsTask, Interval: 30 * time.Second, Run: s.LiveNotifications},
		{Name: ActivityStreamTask, Interval: 15 * time.Second, Run: s.ActivityStream},
		{Name: ClanChatTask, Interval: 20 * time.Second, Run: s.ClanChat},
		{Name: LiveCountersTask, Interval: 5 * time.Second, Run: s.LiveCounters},
		{Name: VoiceChannelsTask, Interval: 15 * time.Second, Run: s.VoiceChannels},
	}
}

func (s *Simulation) ClanActivity(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.Clans.SimulateOnline(s.rng)
	if err != nil {
		return fmt.Errorf("clan activity: %w", err)
	}
	s.Log.Debug("clan activity", "changed", n)
	return nil
}

func (s *Simulation) TournamentSignups(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.Tournaments.SimulateSignup(s.rng)
	if err != nil {
		return fmt.Errorf("tournament signups: %w", err)
	}
	if n > 0 {
		s.Log.Info("simulated tournament signups", "teams", n)
	}
	return nil
}

// UserStats records a random match for roughly one in ten online users.
func (s *Simulation) UserStats(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, userID := range s.Presence.Online() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.rng.Float64() >= 0.1 {
			continue
		}
		game := simulatedGames[s.rng.IntN(len(simulatedGames))]
		result, outcome := models.ResultLoss, "Defeat"
		if s.rng.Float64() < 0.5 {
			result, outcome = models.ResultWin, "Victory!"
		}

		_, err := s.Profiles.RecordGameResult(userID, game, result)
		if errors.Is(err, services.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("user stats for %s: %w", userID, err)
		}
		if _, err := s.Profiles.AddActivity(userID, models.Activity{
			Icon:    "gamepad",
			Message: fmt.Sprintf("Played %s - %s", utils.GameName(game), outcome),
		}); err != nil {
			return fmt.Errorf("user activity for %s: %w", userID, err)
		}
	}
	return nil
}

func (s *Simulation) LiveNotifications(ctx context.Context) error {
	s.mu.Lock()
	if s.rng.Float64() >= 0.3 {
		s.mu.Unlock()
		return nil
	}
	n := notifications[s.rng.IntN(len(notifications))]
	s.mu.Unlock()

	s.Bus.Publish(events.Event{Category: events.LiveNotification, Kind: n.Type, Payload: n})
	return nil
}

func (s *Simulation) ActivityStream(ctx context.Context) error {
	s.mu.Lock()
	msg := communityActivity[s.rng.IntN(len(communityActivity))]
	s.mu.Unlock()

	s.Feed.Push("bolt", msg)
	return nil
}

func (s *Simulation) ClanChat(ctx context.Context) error {
	s.mu.Lock()
	if s.rng.Float64() >= 0.2 {
		s.mu.Unlock()
		return nil
	}
	user := chatUsers[s.rng.IntN(len(chatUsers))]
	msg := chatMessages[s.rng.IntN(len(chatMessages))]
	s.mu.Unlock()

	if _, err := s.Chat.Post(user, msg); err != nil {
		return fmt.Errorf("clan chat: %w", err)
	}
	return nil
}

func (s *Simulation) LiveCounters(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Counters.Drift(s.rng)
	return nil
}

func (s *Simulation) VoiceChannels(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Voice.Reshuffle(s.rng)
	return nil
}

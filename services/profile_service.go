package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"clan-portal/models"
	"clan-portal/store"
)

// errAchievementHeld aborts an AddAchievement update without writing.
var errAchievementHeld = errors.New("achievement already unlocked")

type ProfileService struct {
	mu       sync.Mutex
	profiles *store.Store[*models.UserProfile]
	now      func() time.Time
}

func NewProfileService(profiles *store.Store[*models.UserProfile]) *ProfileService {
	return &ProfileService{profiles: profiles, now: time.Now}
}

// ProfileUpdate is a partial profile edit; nil fields are kept.
type ProfileUpdate struct {
	Username *string                 `json:"username,omitempty"`
	Email    *string                 `json:"email,omitempty"`
	Platform *string                 `json:"platform,omitempty"`
	Bio      *string                 `json:"bio,omitempty"`
	Settings *models.ProfileSettings `json:"settings,omitempty"`
}

// GetOrCreate returns the user's profile, creating and persisting a default
// one on first sight.
func (s *ProfileService) GetOrCreate(user models.User) (*models.UserProfile, error) {
	if strings.TrimSpace(user.ID) == "" {
		return nil, fmt.Errorf("user id is required: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, err := s.profiles.Get(user.ID); err == nil {
		return p, nil
	}

	now := s.now()
	return s.profiles.Add(&models.UserProfile{
		UserID:         user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Platform:       user.Platform,
		Rank:           models.DefaultRank,
		Games:          map[string]*models.GameStats{},
		Achievements:   []models.Achievement{},
		RecentActivity: []models.Activity{},
		Settings:       models.DefaultSettings,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (s *ProfileService) Get(userID string) (*models.UserProfile, error) {
	return s.profiles.Get(userID)
}

func (s *ProfileService) List() []*models.UserProfile {
	return s.profiles.All()
}

func winRate(wins, losses int) int {
	played := wins + losses
	if played == 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(played) * 100))
}

// RecordGameResult adds a win or loss for game to both the per-game and the
// aggregate stats.
func (s *ProfileService) RecordGameResult(userID, game, result string) (*models.UserProfile, error) {
	if result != models.ResultWin && result != models.ResultLoss {
		return nil, fmt.Errorf("result must be win or loss, got %q: %w", result, ErrValidation)
	}
	game = strings.TrimSpace(game)
	if game == "" {
		return nil, fmt.Errorf("game is required: %w", ErrValidation)
	}

	return s.profiles.Update(userID, func(p *models.UserProfile) error {
		if p.Games == nil {
			p.Games = map[string]*models.GameStats{}
		}
		gs := p.Games[game]
		if gs == nil {
			gs = &models.GameStats{Rank: models.DefaultGameRank}
			p.Games[game] = gs
		}
		if result == models.ResultWin {
			gs.Wins++
			p.Stats.Wins++
		} else {
			gs.Losses++
			p.Stats.Losses++
		}
		gs.WinRate = winRate(gs.Wins, gs.Losses)
		p.Stats.GamesPlayed = p.Stats.Wins + p.Stats.Losses
		p.Stats.WinRate = winRate(p.Stats.Wins, p.Stats.Losses)
		p.UpdatedAt = s.now()
		return nil
	})
}

// AddAchievement unlocks a; it reports false when the profile already holds
// an achievement with the same id.
func (s *ProfileService) AddAchievement(userID string, a models.Achievement) (bool, error) {
	if strings.TrimSpace(a.ID) == "" {
		return false, fmt.Errorf("achievement id is required: %w", ErrValidation)
	}

	_, err := s.profiles.Update(userID, func(p *models.UserProfile) error {
		for _, have := range p.Achievements {
			if have.ID == a.ID {
				return errAchievementHeld
			}
		}
		now := s.now()
		a.Unlocked = true
		a.UnlockedAt = &now
		p.Achievements = append(p.Achievements, a)
		p.UpdatedAt = now
		return nil
	})
	if errors.Is(err, errAchievementHeld) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddActivity prepends an entry stamped now to the recent activity list,
// keeping the newest models.MaxRecentActivity.
func (s *ProfileService) AddActivity(userID string, a models.Activity) (*models.UserProfile, error) {
	return s.profiles.Update(userID, func(p *models.UserProfile) error {
		a.Timestamp = s.now()
		next := make([]models.Activity, 0, models.MaxRecentActivity)
		next = append(next, a)
		next = append(next, p.RecentActivity...)
		if len(next) > models.MaxRecentActivity {
			next = next[:models.MaxRecentActivity]
		}
		p.RecentActivity = next
		return nil
	})
}

func (s *ProfileService) UpdateProfile(userID string, u ProfileUpdate) (*models.UserProfile, error) {
	if u.Username != nil && strings.TrimSpace(*u.Username) == "" {
		return nil, fmt.Errorf("username cannot be empty: %w", ErrValidation)
	}
	if u.Email != nil && strings.TrimSpace(*u.Email) == "" {
		return nil, fmt.Errorf("email cannot be empty: %w", ErrValidation)
	}

	return s.profiles.Update(userID, func(p *models.UserProfile) error {
		if u.Username != nil {
			p.Username = strings.TrimSpace(*u.Username)
		}
		if u.Email != nil {
			p.Email = strings.TrimSpace(*u.Email)
		}
		if u.Platform != nil {
			p.Platform = *u.Platform
		}
		if u.Bio != nil {
			p.Bio = *u.Bio
		}
		if u.Settings != nil {
			p.Settings = *u.Settings
		}
		p.UpdatedAt = s.now()
		return nil
	})
}

// SetClanMembership records that the user belongs to clan.
func (s *ProfileService) SetClanMembership(userID string, clan *models.Clan, role string) (*models.UserProfile, error) {
	if role == "" {
		role = "Member"
	}
	return s.profiles.Update(userID, func(p *models.UserProfile) error {
		p.Clan = &models.ClanMembership{
			ClanID:   clan.ID,
			Name:     clan.Name,
			Tag:      clan.Tag,
			Role:     role,
			JoinDate: s.now(),
		}
		p.UpdatedAt = s.now()
		return nil
	})
}

func (s *ProfileService) ClearClanMembership(userID string) (*models.UserProfile, error) {
	return s.profiles.Update(userID, func(p *models.UserProfile) error {
		p.Clan = nil
		p.UpdatedAt = s.now()
		return nil
	})
}

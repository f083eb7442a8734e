package services

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"clan-portal/models"
	"clan-portal/store"
	"clan-portal/utils"
)

type ClanService struct {
	mu    sync.Mutex
	clans *store.Store[*models.Clan]
	now   func() time.Time
}

func NewClanService(clans *store.Store[*models.Clan]) *ClanService {
	return &ClanService{clans: clans, now: time.Now}
}

type CreateClanInput struct {
	Name        string   `json:"name"`
	Tag         string   `json:"tag"`
	Game        string   `json:"game"`
	Platforms   []string `json:"platforms"`
	Description string   `json:"description"`
	Rank        string   `json:"rank"`
}

// ClanStats is a partial update; nil fields are left alone.
type ClanStats struct {
	Online      *int    `json:"online,omitempty"`
	Rank        *string `json:"rank,omitempty"`
	WinRate     *string `json:"winRate,omitempty"`
	Recruitment *string `json:"recruitment,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *ClanService) CreateClan(in CreateClanInput) (*models.Clan, error) {
	name := strings.TrimSpace(in.Name)
	game := strings.TrimSpace(in.Game)
	if name == "" || game == "" {
		return nil, fmt.Errorf("clan name and game are required: %w", ErrValidation)
	}

	tag := strings.TrimSpace(in.Tag)
	if tag == "" {
		tag = utils.ClanTag(name)
	}
	rank := strings.TrimSpace(in.Rank)
	if rank == "" {
		rank = models.DefaultGameRank
	}
	platforms := in.Platforms
	if platforms == nil {
		platforms = []string{}
	}

	return s.clans.Add(&models.Clan{
		Name:        name,
		Tag:         tag,
		Game:        game,
		Platforms:   platforms,
		Members:     1,
		Online:      0,
		Rank:        rank,
		WinRate:     "0%",
		Description: in.Description,
		Recruitment: models.RecruitmentOpen,
		Created:     s.now(),
	})
}

func (s *ClanService) Get(clanID string) (*models.Clan, error) {
	return s.clans.Get(clanID)
}

func (s *ClanService) List() []*models.Clan {
	return s.clans.All()
}

// JoinClan adds one member. userID is accepted for the caller's bookkeeping;
// clans track a headcount, not a roster.
func (s *ClanService) JoinClan(clanID, userID string) (*models.Clan, error) {
	return s.clans.Update(clanID, func(c *models.Clan) error {
		if c.Recruitment != models.RecruitmentOpen {
			return fmt.Errorf("join %s: %w", c.Name, ErrClosed)
		}
		c.Members++
		return nil
	})
}

func (s *ClanService) LeaveClan(clanID, userID string) (*models.Clan, error) {
	return s.clans.Update(clanID, func(c *models.Clan) error {
		if c.Members <= 0 {
			return fmt.Errorf("leave %s: %w", c.Name, ErrEmptyClan)
		}
		c.Members--
		if c.Online > c.Members {
			c.Online = c.Members
		}
		return nil
	})
}

func (s *ClanService) UpdateStats(clanID string, stats ClanStats) (*models.Clan, error) {
	return s.clans.Update(clanID, func(c *models.Clan) error {
		if stats.Online != nil {
			if *stats.Online < 0 || *stats.Online > c.Members {
				return fmt.Errorf("online %d outside [0, %d]: %w", *stats.Online, c.Members, ErrValidation)
			}
			c.Online = *stats.Online
		}
		if stats.Recruitment != nil {
			switch *stats.Recruitment {
			case models.RecruitmentOpen, models.RecruitmentClosed:
				c.Recruitment = *stats.Recruitment
			default:
				return fmt.Errorf("unknown recruitment state %q: %w", *stats.Recruitment, ErrValidation)
			}
		}
		if stats.Rank != nil {
			c.Rank = *stats.Rank
		}
		if stats.WinRate != nil {
			c.WinRate = *stats.WinRate
		}
		if stats.Description != nil {
			c.Description = *stats.Description
		}
		return nil
	})
}

// Filter keeps clans that play on one of platforms and one of games.
func (s *ClanService) Filter(platforms, games []string) []*models.Clan {
	if len(platforms) == 0 || len(games) == 0 {
		return []*models.Clan{}
	}
	keys := make(map[string]bool, len(games))
	for _, g := range games {
		keys[utils.GameKey(g)] = true
	}
	out := s.clans.Filter(func(c *models.Clan) bool {
		if !keys[utils.GameKey(c.Game)] {
			return false
		}
		for _, p := range platforms {
			if c.SupportsPlatform(p) {
				return true
			}
		}
		return false
	})
	if out == nil {
		out = []*models.Clan{}
	}
	return out
}

// Top returns up to n clans ordered by member count, largest first.
func (s *ClanService) Top(n int) []*models.Clan {
	all := s.clans.All()
	sort.SliceStable(all, func(i, j int) bool { return all[i].Members > all[j].Members })
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Search matches query against clan names and tags ignoring case and accents.
func (s *ClanService) Search(query string) []*models.Clan {
	q := utils.SearchKey(strings.TrimSpace(query))
	if q == "" {
		return s.clans.All()
	}
	out := s.clans.Filter(func(c *models.Clan) bool {
		return strings.Contains(utils.SearchKey(c.Name), q) ||
			strings.Contains(utils.SearchKey(c.Tag), q)
	})
	if out == nil {
		out = []*models.Clan{}
	}
	return out
}

// TotalMembers sums members over every clan.
func (s *ClanService) TotalMembers() int {
	total := 0
	for _, c := range s.clans.All() {
		total += c.Members
	}
	return total
}

// SimulateOnline nudges each clan's online count by -1, 0 or +1.
func (s *ClanService) SimulateOnline(rng *rand.Rand) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, c := range s.clans.All() {
		delta := rng.IntN(3) - 1
		next := min(max(c.Online+delta, 0), c.Members)
		if next == c.Online {
			continue
		}
		if _, err := s.clans.Update(c.ID, func(cur *models.Clan) error {
			cur.Online = min(max(cur.Online+delta, 0), cur.Members)
			return nil
		}); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

package services

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"clan-portal/models"
	"clan-portal/store"
	"clan-portal/utils"
)

const DefaultOrganizer = "Cyber Legion"

// FilterAll matches every value of a tournament filter dimension.
const FilterAll = "all"

var statusTransitions = map[string][]string{
	models.TournamentStatusRegistration: {models.TournamentStatusOngoing, models.TournamentStatusCancelled},
	models.TournamentStatusOngoing:      {models.TournamentStatusCompleted},
}

func knownStatus(status string) bool {
	switch status {
	case models.TournamentStatusRegistration, models.TournamentStatusOngoing,
		models.TournamentStatusCompleted, models.TournamentStatusCancelled:
		return true
	}
	return false
}

type TournamentService struct {
	// mu serializes Register so the capacity and duplicate checks see
	// the registration they guard.
	mu            sync.Mutex
	tournaments   *store.Store[*models.Tournament]
	registrations *store.Store[*models.Registration]
	now           func() time.Time
}

func NewTournamentService(tournaments *store.Store[*models.Tournament], registrations *store.Store[*models.Registration]) *TournamentService {
	return &TournamentService{
		tournaments:   tournaments,
		registrations: registrations,
		now:           time.Now,
	}
}

type CreateTournamentInput struct {
	Name      string    `json:"name"`
	Game      string    `json:"game"`
	Platforms []string  `json:"platforms"`
	Prize     string    `json:"prize"`
	MaxTeams  int       `json:"maxTeams"`
	StartDate time.Time `json:"startDate"`
	Organizer string    `json:"organizer"`
	Featured  bool      `json:"featured"`
}

func (s *TournamentService) CreateTournament(in CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(in.Name)
	game := strings.TrimSpace(in.Game)
	if name == "" || game == "" {
		return nil, fmt.Errorf("tournament name and game are required: %w", ErrValidation)
	}
	maxTeams := in.MaxTeams
	if maxTeams == 0 {
		maxTeams = models.DefaultMaxTeams
	}
	if maxTeams < 0 {
		return nil, fmt.Errorf("maxTeams must be positive, got %d: %w", maxTeams, ErrValidation)
	}
	organizer := strings.TrimSpace(in.Organizer)
	if organizer == "" {
		organizer = DefaultOrganizer
	}
	platforms := in.Platforms
	if platforms == nil {
		platforms = []string{}
	}

	return s.tournaments.Add(&models.Tournament{
		Name:            name,
		Game:            game,
		Platforms:       platforms,
		Prize:           in.Prize,
		RegisteredTeams: 0,
		MaxTeams:        maxTeams,
		Status:          models.TournamentStatusRegistration,
		StartDate:       in.StartDate,
		Organizer:       organizer,
		Featured:        in.Featured,
		Created:         s.now(),
	})
}

func (s *TournamentService) Get(id string) (*models.Tournament, error) {
	return s.tournaments.Get(id)
}

func (s *TournamentService) List() []*models.Tournament {
	return s.tournaments.All()
}

// Register signs userID up for a tournament. The registration record and the
// team counter change together: if the counter cannot be written the
// registration is discarded again.
func (s *TournamentService) Register(tournamentID, userID, username string) (*models.Registration, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.tournaments.Get(tournamentID)
	if err != nil {
		return nil, err
	}
	if err := checkOpen(t); err != nil {
		return nil, err
	}
	if s.isRegistered(tournamentID, userID) {
		return nil, fmt.Errorf("user %s in %s: %w", userID, t.Name, ErrAlreadyRegistered)
	}

	reg, err := s.registrations.Add(&models.Registration{
		TournamentID: tournamentID,
		UserID:       userID,
		Username:     username,
		TeamName:     username + "'s Team",
		RegisteredAt: s.now(),
		Status:       models.RegistrationStatusRegistered,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.tournaments.Update(tournamentID, func(cur *models.Tournament) error {
		if err := checkOpen(cur); err != nil {
			return err
		}
		cur.RegisteredTeams++
		return nil
	}); err != nil {
		if derr := s.registrations.Discard(reg.ID); derr != nil {
			return nil, errors.Join(err, derr)
		}
		return nil, err
	}
	return reg, nil
}

func checkOpen(t *models.Tournament) error {
	if t.Status != models.TournamentStatusRegistration {
		return fmt.Errorf("%s is %s: %w", t.Name, t.Status, ErrNotOpen)
	}
	if t.IsFull() {
		return fmt.Errorf("%s has %d/%d teams: %w", t.Name, t.RegisteredTeams, t.MaxTeams, ErrFull)
	}
	return nil
}

func (s *TournamentService) isRegistered(tournamentID, userID string) bool {
	_, ok := s.registrations.Find(func(r *models.Registration) bool {
		return r.TournamentID == tournamentID && r.UserID == userID
	})
	return ok
}

func (s *TournamentService) IsRegistered(tournamentID, userID string) bool {
	return s.isRegistered(tournamentID, userID)
}

// Participants lists the registrations of a tournament in sign-up order.
func (s *TournamentService) Participants(tournamentID string) ([]*models.Registration, error) {
	if _, err := s.tournaments.Get(tournamentID); err != nil {
		return nil, err
	}
	out := s.registrations.Filter(func(r *models.Registration) bool {
		return r.TournamentID == tournamentID
	})
	if out == nil {
		out = []*models.Registration{}
	}
	return out, nil
}

// UserRegistrations lists every registration held by userID.
func (s *TournamentService) UserRegistrations(userID string) []*models.Registration {
	out := s.registrations.Filter(func(r *models.Registration) bool { return r.UserID == userID })
	if out == nil {
		out = []*models.Registration{}
	}
	return out
}

func (s *TournamentService) UpdateStatus(id, status string) (*models.Tournament, error) {
	if !knownStatus(status) {
		return nil, fmt.Errorf("unknown tournament status %q: %w", status, ErrValidation)
	}
	return s.tournaments.Update(id, func(t *models.Tournament) error {
		if !slices.Contains(statusTransitions[t.Status], status) {
			return fmt.Errorf("%s: %s -> %s: %w", t.Name, t.Status, status, ErrInvalidTransition)
		}
		t.Status = status
		return nil
	})
}

// Filter selects tournaments by status, game and platform. An empty value or
// "all" matches everything in that dimension.
func (s *TournamentService) Filter(status, game, platform string) []*models.Tournament {
	out := s.tournaments.Filter(func(t *models.Tournament) bool {
		if !matchesAll(status) && t.Status != status {
			return false
		}
		if !matchesAll(game) && !utils.EqualFold(t.Game, game) {
			return false
		}
		if !matchesAll(platform) && !t.HasPlatform(platform) {
			return false
		}
		return true
	})
	if out == nil {
		out = []*models.Tournament{}
	}
	return out
}

func matchesAll(v string) bool {
	return v == "" || v == FilterAll
}

// Upcoming yields tournaments still taking registrations whose start is in
// the future, soonest first. The snapshot is taken when iteration starts.
func (s *TournamentService) Upcoming() iter.Seq[*models.Tournament] {
	return func(yield func(*models.Tournament) bool) {
		now := s.now()
		list := s.tournaments.Filter(func(t *models.Tournament) bool {
			return t.Status == models.TournamentStatusRegistration && t.StartDate.After(now)
		})
		slices.SortStableFunc(list, func(a, b *models.Tournament) int {
			return a.StartDate.Compare(b.StartDate)
		})
		for _, t := range list {
			if !yield(t) {
				return
			}
		}
	}
}

func (s *TournamentService) Live() []*models.Tournament {
	return s.Filter(models.TournamentStatusOngoing, "", "")
}

// FillRate returns the percentage of taken team slots, rounded.
func (s *TournamentService) FillRate(t *models.Tournament) int {
	return t.FillRate()
}

var botNames = []string{"CyberNinja", "NeonGhost", "DigitalWolf", "ByteHunter", "PixelReaper", "GlitchQueen"}

// SimulateSignup gives each open tournament a 20% chance of a bot team
// registering. Full tournaments are skipped.
func (s *TournamentService) SimulateSignup(rng *rand.Rand) (int, error) {
	signed := 0
	for _, t := range s.tournaments.All() {
		if t.Status != models.TournamentStatusRegistration || t.IsFull() {
			continue
		}
		if rng.Float64() >= 0.2 {
			continue
		}
		name := botNames[rng.IntN(len(botNames))]
		botID := fmt.Sprintf("bot-%s-%d", strings.ToLower(name), rng.Uint32())
		_, err := s.Register(t.ID, botID, name)
		switch {
		case err == nil:
			signed++
		case errors.Is(err, ErrFull), errors.Is(err, ErrNotOpen), errors.Is(err, ErrAlreadyRegistered):
		default:
			return signed, err
		}
	}
	return signed, nil
}

// models/tournament.go
package models

import "time"

const (
	TournamentStatusRegistration = "registration"
	TournamentStatusOngoing      = "ongoing"
	TournamentStatusCompleted    = "completed"
	TournamentStatusCancelled    = "cancelled"
)

const DefaultMaxTeams = 32

type Tournament struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Game            string    `json:"game"`
	Platforms       []string  `json:"platforms"`
	Prize           string    `json:"prize"`
	RegisteredTeams int       `json:"registeredTeams"`
	MaxTeams        int       `json:"maxTeams"`
	Status          string    `json:"status"`
	StartDate       time.Time `json:"startDate"`
	Organizer       string    `json:"organizer"`
	Featured        bool      `json:"featured"`
	Created         time.Time `json:"created"`
}

func (t *Tournament) EntityID() string      { return t.ID }
func (t *Tournament) SetEntityID(id string) { t.ID = id }

func (t *Tournament) HasPlatform(platform string) bool {
	for _, p := range t.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// IsFull reports whether every team slot is taken.
func (t *Tournament) IsFull() bool {
	return t.RegisteredTeams >= t.MaxTeams
}

// FillRate is the rounded percentage of taken slots.
func (t *Tournament) FillRate() int {
	if t.MaxTeams <= 0 {
		return 0
	}
	return (t.RegisteredTeams*100 + t.MaxTeams/2) / t.MaxTeams
}

// Registration links a user's team to a tournament.
type Registration struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournamentId"`
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	TeamName     string    `json:"teamName"`
	RegisteredAt time.Time `json:"registeredAt"`
	Status       string    `json:"status"`
}

const RegistrationStatusRegistered = "registered"

func (r *Registration) EntityID() string      { return r.ID }
func (r *Registration) SetEntityID(id string) { r.ID = id }

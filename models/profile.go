// models/profile.go
package models

import "time"

const (
	DefaultRank     = "Recruit"
	DefaultGameRank = "Unranked"

	ResultWin  = "win"
	ResultLoss = "loss"

	// MaxRecentActivity bounds UserProfile.RecentActivity.
	MaxRecentActivity = 10
)

// User is the identity supplied by the authentication collaborator.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Platform string `json:"platform,omitempty"`
}

type UserProfile struct {
	UserID         string                `json:"userId"`
	Username       string                `json:"username"`
	Email          string                `json:"email,omitempty"`
	Platform       string                `json:"platform,omitempty"`
	Bio            string                `json:"bio,omitempty"`
	Rank           string                `json:"rank"`
	Stats          Stats                 `json:"stats"`
	Games          map[string]*GameStats `json:"games"`
	Clan           *ClanMembership       `json:"clan"`
	Achievements   []Achievement         `json:"achievements"`
	RecentActivity []Activity            `json:"recentActivity"`
	Settings       ProfileSettings       `json:"settings"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

func (p *UserProfile) EntityID() string      { return p.UserID }
func (p *UserProfile) SetEntityID(id string) { p.UserID = id }

// Stats are the aggregate results over every game.
type Stats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	WinRate     int `json:"winRate"`
}

type GameStats struct {
	Wins    int    `json:"wins"`
	Losses  int    `json:"losses"`
	WinRate int    `json:"winRate"`
	Rank    string `json:"rank"`
}

type ClanMembership struct {
	ClanID   string    `json:"clanId"`
	Name     string    `json:"name"`
	Tag      string    `json:"tag"`
	Role     string    `json:"role"`
	JoinDate time.Time `json:"joinDate"`
}

type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

type Activity struct {
	Icon      string    `json:"icon"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ProfileSettings struct {
	Notifications bool   `json:"notifications"`
	Privacy       string `json:"privacy"`
	Theme         string `json:"theme"`
}

var DefaultSettings = ProfileSettings{
	Notifications: true,
	Privacy:       "public",
	Theme:         "cyber",
}

// models/clan.go
package models

import "time"

const (
	RecruitmentOpen   = "Open"
	RecruitmentClosed = "Closed"
)

const (
	PlatformPC          = "pc"
	PlatformPlayStation = "playstation"
	PlatformXbox        = "xbox"
	PlatformNintendo    = "nintendo"
	PlatformMobile      = "mobile"
)

type Clan struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Tag         string    `json:"tag"`
	Game        string    `json:"game"`
	Platforms   []string  `json:"platforms"`
	Members     int       `json:"members"`
	Online      int       `json:"online"` // never above Members
	Rank        string    `json:"rank"`
	WinRate     string    `json:"winRate"` // e.g. "68%"
	Description string    `json:"description,omitempty"`
	Recruitment string    `json:"recruitment"` // Open | Closed
	Created     time.Time `json:"created"`
}

func (c *Clan) EntityID() string      { return c.ID }
func (c *Clan) SetEntityID(id string) { c.ID = id }

// SupportsPlatform reports whether the clan plays on platform.
func (c *Clan) SupportsPlatform(platform string) bool {
	for _, p := range c.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

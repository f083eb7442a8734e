package services

import (
	"math/rand/v2"
	"sync"
	"time"

	"clan-portal/events"
	"clan-portal/models"
)

// MaxFeedEntries bounds the community activity feed.
const MaxFeedEntries = 10

// ActivityFeed is the in-memory community activity stream, newest first.
type ActivityFeed struct {
	mu      sync.RWMutex
	entries []models.Activity
	bus     *events.Bus
	now     func() time.Time
}

func NewActivityFeed(bus *events.Bus) *ActivityFeed {
	return &ActivityFeed{bus: bus, now: time.Now}
}

func (f *ActivityFeed) Push(icon, message string) models.Activity {
	a := models.Activity{Icon: icon, Message: message, Timestamp: f.now()}

	f.mu.Lock()
	next := make([]models.Activity, 0, MaxFeedEntries)
	next = append(next, a)
	next = append(next, f.entries...)
	if len(next) > MaxFeedEntries {
		next = next[:MaxFeedEntries]
	}
	f.entries = next
	f.mu.Unlock()

	if f.bus != nil {
		f.bus.Publish(events.Event{Category: events.Activity, Kind: "activity", Payload: a})
	}
	return a
}

func (f *ActivityFeed) Entries() []models.Activity {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Activity, len(f.entries))
	copy(out, f.entries)
	return out
}

const (
	DefaultOnlineNow = 1247
	MinOnlineNow     = 800
)

// LiveCounters are the community-wide headline numbers.
type LiveCounters struct {
	mu           sync.RWMutex
	onlineNow    int
	totalMembers int
}

type CounterSnapshot struct {
	OnlineNow    int `json:"onlineNow"`
	TotalMembers int `json:"totalMembers"`
}

func NewLiveCounters(onlineNow, totalMembers int) *LiveCounters {
	return &LiveCounters{onlineNow: max(onlineNow, MinOnlineNow), totalMembers: totalMembers}
}

// Drift moves onlineNow by a value in [-10, 10], never below MinOnlineNow,
// and grows totalMembers by one 30% of the time.
func (c *LiveCounters) Drift(rng *rand.Rand) CounterSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onlineNow = max(MinOnlineNow, c.onlineNow+rng.IntN(21)-10)
	if rng.Float64() < 0.3 {
		c.totalMembers++
	}
	return CounterSnapshot{OnlineNow: c.onlineNow, TotalMembers: c.totalMembers}
}

func (c *LiveCounters) Snapshot() CounterSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CounterSnapshot{OnlineNow: c.onlineNow, TotalMembers: c.totalMembers}
}

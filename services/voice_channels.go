package services

import (
	"math/rand/v2"
	"sync"

	"clan-portal/events"
)

// MaxVoiceUsers is the most users the simulation puts in one channel.
const MaxVoiceUsers = 7

// VoiceChannelNames lists the community voice channels in display order.
var VoiceChannelNames = []string{"General", "Competitive", "Casual", "Tournament"}

type VoiceChannel struct {
	Name  string `json:"name"`
	Users int    `json:"users"`
}

// VoiceChannels holds the in-memory occupancy of each voice channel.
type VoiceChannels struct {
	mu     sync.RWMutex
	counts map[string]int
	bus    *events.Bus
}

func NewVoiceChannels(bus *events.Bus) *VoiceChannels {
	counts := make(map[string]int, len(VoiceChannelNames))
	for _, name := range VoiceChannelNames {
		counts[name] = 0
	}
	return &VoiceChannels{counts: counts, bus: bus}
}

// Reshuffle gives every channel a new occupancy in [0, MaxVoiceUsers] and
// publishes the result.
func (v *VoiceChannels) Reshuffle(rng *rand.Rand) []VoiceChannel {
	v.mu.Lock()
	for _, name := range VoiceChannelNames {
		v.counts[name] = rng.IntN(MaxVoiceUsers + 1)
	}
	snap := v.snapshot()
	v.mu.Unlock()

	if v.bus != nil {
		v.bus.Publish(events.Event{Category: events.VoiceChanged, Kind: "voice", Payload: snap})
	}
	return snap
}

func (v *VoiceChannels) Snapshot() []VoiceChannel {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot()
}

func (v *VoiceChannels) snapshot() []VoiceChannel {
	out := make([]VoiceChannel, 0, len(VoiceChannelNames))
	for _, name := range VoiceChannelNames {
		out = append(out, VoiceChannel{Name: name, Users: v.counts[name]})
	}
	return out
}

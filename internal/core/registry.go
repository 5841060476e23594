package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RoomInfo is a read-only occupancy view for the HTTP surface.
type RoomInfo struct {
	MeetingID string `json:"meeting_id"`
	Active    int    `json:"active"`
	Waiting   int    `json:"waiting"`
}

// Registry maps meeting ids to live rooms. At most one room exists per
// meeting id, even under concurrent first connections. A room that drains
// (no active, no waiting) is evicted after a grace period unless someone
// comes back first.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	timers map[string]*time.Timer
	grace  time.Duration
}

func NewRegistry(grace time.Duration) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		timers: make(map[string]*time.Timer),
		grace:  grace,
	}
}

// GetOrCreate returns the room for meetingID, constructing it with hostID on
// first use. Re-entry cancels any pending eviction.
func (rg *Registry) GetOrCreate(meetingID, hostID string) *Room {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	if t, ok := rg.timers[meetingID]; ok {
		t.Stop()
		delete(rg.timers, meetingID)
	}
	if room, ok := rg.rooms[meetingID]; ok {
		return room
	}

	room := NewRoom(meetingID, hostID, func() { rg.scheduleEviction(meetingID) })
	rg.rooms[meetingID] = room
	log.Info().Str("module", "core.registry").Str("meeting", meetingID).Msg("room created")
	return room
}

func (rg *Registry) scheduleEviction(meetingID string) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	if _, ok := rg.rooms[meetingID]; !ok {
		return
	}
	if t, ok := rg.timers[meetingID]; ok {
		t.Stop()
	}
	rg.timers[meetingID] = time.AfterFunc(rg.grace, func() { rg.evictIfEmpty(meetingID) })
}

func (rg *Registry) evictIfEmpty(meetingID string) {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	delete(rg.timers, meetingID)
	room, ok := rg.rooms[meetingID]
	if !ok || !room.Empty() {
		return
	}
	delete(rg.rooms, meetingID)
	log.Info().Str("module", "core.registry").Str("meeting", meetingID).Msg("room evicted")
}

// Len reports how many rooms are live.
func (rg *Registry) Len() int {
	rg.mu.Lock()
	defer rg.mu.Unlock()
	return len(rg.rooms)
}

// List snapshots occupancy across all rooms.
func (rg *Registry) List() []RoomInfo {
	rg.mu.Lock()
	rooms := make([]*Room, 0, len(rg.rooms))
	for _, room := range rg.rooms {
		rooms = append(rooms, room)
	}
	rg.mu.Unlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, RoomInfo{
			MeetingID: room.MeetingID(),
			Active:    len(room.ActiveIDs()),
			Waiting:   len(room.WaitingIDs()),
		})
	}
	return out
}

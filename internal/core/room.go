package core

import (
	"fmt"
	"sync"

	"github.com/confmesh/signaling/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	// CloseRejected is the close code sent to a waiting participant whose
	// join request the host turned down.
	CloseRejected = 4000
	// CloseSuperseded is the close code sent to a connection replaced by a
	// newer one carrying the same identity.
	CloseSuperseded = 4001
)

// Room is the state machine for one meeting: the active roster, the ordered
// waiting queue and the admission rules between them. All roster mutations
// happen under one mutex; rooms are independent of each other.
//
// A room never closes adapter-owned resources except to evict a rejected
// waiter.
type Room struct {
	meetingID string
	hostID    string

	mu       sync.Mutex
	active   []*Participant
	waiting  []*Participant
	guestSeq int

	// onEmpty fires after the last participant (active or waiting) is gone.
	// Set once at construction; called outside the room lock.
	onEmpty func()
}

func NewRoom(meetingID, hostID string, onEmpty func()) *Room {
	return &Room{
		meetingID: meetingID,
		hostID:    hostID,
		guestSeq:  1,
		onEmpty:   onEmpty,
	}
}

func (r *Room) MeetingID() string { return r.meetingID }
func (r *Room) HostID() string    { return r.hostID }

func (r *Room) IsHost(id string) bool { return id == r.hostID }

// Admit routes a freshly connected participant: the host joins directly,
// everyone else lands in the waiting queue. Guests without a resolved
// identity get an id minted here.
func (r *Room) Admit(p *Participant) {
	r.mu.Lock()
	if p.Meta().ID == "" {
		p.Meta().ID = fmt.Sprintf("%s-%d", r.meetingID, r.guestSeq)
		r.guestSeq++
	}
	if p.ID() == r.hostID {
		r.joinLocked(p)
	} else {
		r.requestLocked(p)
	}
	r.mu.Unlock()
	log.Info().Str("module", "core.room").Str("meeting", r.meetingID).Str("id", p.ID()).Bool("host", r.IsHost(p.ID())).Msg("participant admitted")
}

// RequestToJoin (re-)enqueues a participant and pings the host. Re-requests
// from an already queued participant only resend the ping.
func (r *Room) RequestToJoin(p *Participant) {
	r.mu.Lock()
	r.requestLocked(p)
	r.mu.Unlock()
}

func (r *Room) requestLocked(p *Participant) {
	if findByID(r.active, p.ID()) >= 0 {
		// Same identity reconnecting; swap transports instead of queueing.
		r.joinLocked(p)
		return
	}
	if findByID(r.waiting, p.ID()) < 0 {
		r.waiting = append(r.waiting, p)
	}
	// Best-effort: an absent host simply never hears the request.
	r.unicastLocked(r.hostID, domain.Signal{
		Type:     domain.EventUserRequest,
		Sender:   p.ID(),
		Name:     p.Name(),
		Receiver: r.hostID,
	})
}

// Accept moves a waiting participant into the active roster. Unknown target
// ids are ignored.
func (r *Room) Accept(targetID string) {
	r.mu.Lock()
	if i := findByID(r.waiting, targetID); i >= 0 {
		r.joinLocked(r.waiting[i])
	}
	r.mu.Unlock()
}

// Reject dequeues a waiting participant and closes its connection.
func (r *Room) Reject(targetID string) {
	r.mu.Lock()
	var target *Participant
	if i := findByID(r.waiting, targetID); i >= 0 {
		target = r.waiting[i]
		r.waiting = append(r.waiting[:i], r.waiting[i+1:]...)
	}
	empty := len(r.active) == 0 && len(r.waiting) == 0
	r.mu.Unlock()

	if target == nil {
		return
	}
	target.Conn().Close(CloseRejected, "join request rejected")
	log.Info().Str("module", "core.room").Str("meeting", r.meetingID).Str("id", targetID).Msg("join request rejected")
	if empty && r.onEmpty != nil {
		r.onEmpty()
	}
}

// joinLocked finishes admission: dequeue, append to the roster, notify the
// joiner and, when there is anyone to tell, the rest of the room.
func (r *Room) joinLocked(p *Participant) {
	if i := findByID(r.waiting, p.ID()); i >= 0 {
		r.waiting = append(r.waiting[:i], r.waiting[i+1:]...)
	}
	if i := findByID(r.active, p.ID()); i >= 0 {
		// Reconnect with the same identity: swap the transport and shut the
		// old one down so its pump cannot later evict the replacement.
		// Peers already saw this id join.
		old := r.active[i]
		r.active[i] = p
		if old != p {
			old.Conn().Close(CloseSuperseded, "superseded by newer connection")
		}
		r.sendLocked(p, selfAcceptance(p))
		return
	}

	hadOthers := len(r.active) > 0
	r.active = append(r.active, p)
	r.sendLocked(p, selfAcceptance(p))
	if hadOthers {
		r.broadcastLocked(domain.Signal{
			Type:   domain.EventUserJoined,
			Sender: p.ID(),
			Name:   p.Name(),
		}, p.ID())
	}
}

func selfAcceptance(p *Participant) domain.Signal {
	return domain.Signal{
		Type:     domain.EventUserRequestAccepted,
		Sender:   p.ID(),
		Name:     p.Name(),
		Receiver: p.ID(),
	}
}

// Leave handles both voluntary departure and transport disconnect. Waiting
// entries are shed too, so an abandoned request does not linger. Removal
// matches the participant itself, not just its id: a stale connection's
// departure must not evict a reconnected replacement with the same identity.
func (r *Room) Leave(p *Participant) {
	r.mu.Lock()
	if i := findParticipant(r.waiting, p); i >= 0 {
		r.waiting = append(r.waiting[:i], r.waiting[i+1:]...)
	}
	wasActive := false
	if i := findParticipant(r.active, p); i >= 0 {
		r.active = append(r.active[:i], r.active[i+1:]...)
		wasActive = true
	}
	if wasActive {
		r.broadcastLocked(domain.Signal{
			Type:   domain.EventUserLeft,
			Sender: p.ID(),
		}, p.ID())
	}
	empty := len(r.active) == 0 && len(r.waiting) == 0
	r.mu.Unlock()

	if wasActive {
		log.Info().Str("module", "core.room").Str("meeting", r.meetingID).Str("id", p.ID()).Msg("participant left")
	}
	if empty && r.onEmpty != nil {
		r.onEmpty()
	}
}

// Unicast delivers to the one active participant matching receiverID; no-op
// if absent.
func (r *Room) Unicast(receiverID string, sig domain.Signal) {
	r.mu.Lock()
	r.unicastLocked(receiverID, sig)
	r.mu.Unlock()
}

func (r *Room) unicastLocked(receiverID string, sig domain.Signal) {
	if i := findByID(r.active, receiverID); i >= 0 {
		r.sendLocked(r.active[i], sig)
	}
}

// Broadcast delivers to every active participant except excludeID.
func (r *Room) Broadcast(sig domain.Signal, excludeID string) {
	r.mu.Lock()
	r.broadcastLocked(sig, excludeID)
	r.mu.Unlock()
}

func (r *Room) broadcastLocked(sig domain.Signal, excludeID string) {
	for _, p := range r.active {
		if p.ID() == excludeID {
			continue
		}
		r.sendLocked(p, sig)
	}
}

func (r *Room) sendLocked(p *Participant, sig domain.Signal) {
	p.send(sig)
}

// Empty reports whether both rosters have drained.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active) == 0 && len(r.waiting) == 0
}

// ActiveIDs returns the active roster ids in join order.
func (r *Room) ActiveIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ids(r.active)
}

// WaitingIDs returns the waiting queue ids in request order.
func (r *Room) WaitingIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ids(r.waiting)
}

func ids(ps []*Participant) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID())
	}
	return out
}

func findByID(ps []*Participant, id string) int {
	for i, p := range ps {
		if p.ID() == id {
			return i
		}
	}
	return -1
}

func findParticipant(ps []*Participant, p *Participant) int {
	for i, v := range ps {
		if v == p {
			return i
		}
	}
	return -1
}

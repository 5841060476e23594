package core

import (
	"encoding/json"

	"github.com/confmesh/signaling/internal/domain"
	"github.com/rs/zerolog/log"
)

// Router turns raw inbound frames into room operations. One dispatch per
// frame, synchronously on the caller's read loop, so a connection's messages
// apply in the order they were sent.
type Router struct {
	// limiter throttles join-request pings per participant; nil disables.
	limiter *JoinLimiter
}

func NewRouter(limiter *JoinLimiter) *Router {
	return &Router{limiter: limiter}
}

// Release drops per-participant dispatch state once its connection is gone.
func (rt *Router) Release(id string) {
	if rt.limiter != nil {
		rt.limiter.Forget(id)
	}
}

// Dispatch parses the envelope, stamps the sender identity and routes by
// type. A malformed frame is logged and dropped; the connection stays up.
func (rt *Router) Dispatch(room *Room, p *Participant, raw []byte) {
	var sig domain.Signal
	if err := json.Unmarshal(raw, &sig); err != nil {
		log.Warn().Err(err).Str("module", "core.router").Str("id", p.ID()).Msg("malformed frame dropped")
		return
	}

	// Clients don't get to claim an identity.
	sig.Sender = p.ID()
	sig.Name = p.Name()

	switch sig.Type {
	case domain.EventOffer, domain.EventAnswer, domain.EventICECandidate:
		// Opaque relay. A missing receiver is silently dropped.
		room.Unicast(sig.Receiver, sig)

	case domain.EventUserRequest:
		if rt.limiter != nil && !rt.limiter.Allow(p.ID()) {
			log.Warn().Str("module", "core.router").Str("id", p.ID()).Msg("join request throttled")
			return
		}
		room.RequestToJoin(p)

	case domain.EventUserRequestAccepted:
		if !room.IsHost(p.ID()) {
			log.Warn().Str("module", "core.router").Str("id", p.ID()).Msg("non-host acceptance ignored")
			return
		}
		room.Accept(sig.Receiver)

	case domain.EventUserRequestRejected:
		if !room.IsHost(p.ID()) {
			log.Warn().Str("module", "core.router").Str("id", p.ID()).Msg("non-host rejection ignored")
			return
		}
		room.Reject(sig.Receiver)

	case domain.EventUserLeft:
		room.Leave(p)

	case domain.EventUserJoined:
		// Server-originated only; a client sending this is noise.
		log.Debug().Str("module", "core.router").Str("id", p.ID()).Msg("client-sent join notice dropped")

	default:
		log.Warn().Str("module", "core.router").Str("id", p.ID()).Str("type", string(sig.Type)).Msg("unknown signal")
	}
}

package core

import (
	"encoding/json"

	"github.com/confmesh/signaling/internal/domain"
	"github.com/rs/zerolog/log"
)

// Participant binds identity meta to its signaling transport.
// This is what a room stores and fans out to.
type Participant struct {
	meta *domain.Participant
	conn SignalConnection
}

func NewParticipant(meta *domain.Participant, conn SignalConnection) *Participant {
	return &Participant{meta: meta, conn: conn}
}

func (p *Participant) ID() string                { return p.meta.ID }
func (p *Participant) Name() string              { return p.meta.Name }
func (p *Participant) Meta() *domain.Participant { return p.meta }
func (p *Participant) Conn() SignalConnection    { return p.conn }

// send marshals and fires the envelope at this participant. Delivery is
// best-effort: errors are logged and the frame is dropped.
func (p *Participant) send(sig domain.Signal) {
	data, err := json.Marshal(sig)
	if err != nil {
		log.Error().Err(err).Str("module", "core.participant").Str("id", p.ID()).Msg("marshal signal")
		return
	}
	if err := p.conn.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "core.participant").Str("id", p.ID()).Str("type", string(sig.Type)).Msg("dropped frame")
	}
}

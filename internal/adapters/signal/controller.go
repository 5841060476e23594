// Package signal is the websocket transport adapter: it upgrades
// connections, resolves the caller's meeting and identity, and hands a
// participant to the room core. Everything after admission is pumps.
package signal

import (
	"context"
	"errors"
	"net/http"

	"github.com/confmesh/signaling/internal/auth"
	"github.com/confmesh/signaling/internal/config"
	"github.com/confmesh/signaling/internal/core"
	"github.com/confmesh/signaling/internal/domain"
	"github.com/confmesh/signaling/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// MeetingFinder resolves a meeting id to its host id.
type MeetingFinder interface {
	FindMeetingByID(ctx context.Context, meetingID string) (string, error)
}

type Controller struct {
	Meetings MeetingFinder
	Auth     *auth.Resolver // nil means every caller is a guest
	Registry *core.Registry
	Router   *core.Router
	Cfg      *config.Config
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal is the websocket entry point. Query params carry the meeting
// id and display name; identity comes from the web app's session cookie when
// present.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	meetingID := c.Query("meetingId")
	name := c.Query("name")
	if meetingID == "" {
		c.String(http.StatusBadRequest, "missing meetingId")
		return
	}

	hostID, err := ctl.Meetings.FindMeetingByID(c.Request.Context(), meetingID)
	if err != nil {
		if errors.Is(err, store.ErrMeetingNotFound) {
			log.Warn().Str("module", "signal").Str("meeting", meetingID).Msg("unknown meeting")
			c.String(http.StatusNotFound, "unknown meeting")
			return
		}
		log.Error().Err(err).Str("module", "signal").Str("meeting", meetingID).Msg("meeting lookup failed")
		c.String(http.StatusInternalServerError, "meeting lookup failed")
		return
	}

	userID := ctl.resolveIdentity(c)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	connID := uuid.NewString()
	log.Info().Str("module", "signal").Str("conn", connID).Str("meeting", meetingID).Str("user", userID).Msg("new WS connection")

	conn := newWSConn(ws, ctl.Cfg.SendBuffer, ctl.Cfg.WriteTimeout)
	p := core.NewParticipant(domain.NewParticipant(userID, name), conn)

	room := ctl.Registry.GetOrCreate(meetingID, hostID)
	room.Admit(p)

	go ctl.writePump(ctx, connID, conn)
	go ctl.readPump(ctx, connID, room, p, conn)
}

func (ctl *Controller) resolveIdentity(c *gin.Context) string {
	if ctl.Auth == nil {
		return ""
	}
	token, err := c.Cookie(auth.SessionCookie)
	if err != nil || token == "" {
		return ""
	}
	sub, err := ctl.Auth.ResolveSubject(token)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("session token rejected, continuing as guest")
		return ""
	}
	return sub
}

package signal

import (
	"context"
	"sync"
	"time"

	"github.com/confmesh/signaling/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// wsConn adapts a gorilla websocket to core.SignalConnection: a buffered
// outbound channel drained by the write pump, non-blocking TrySend.
type wsConn struct {
	conn         *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

func newWSConn(ws *websocket.Conn, buffer int, writeTimeout time.Duration) *wsConn {
	return &wsConn{
		conn:         ws,
		send:         make(chan []byte, buffer),
		writeTimeout: writeTimeout,
	}
}

func (c *wsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrClosed
	}
	select {
	case c.send <- data:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close(code int, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	deadline := time.Now().Add(c.writeTimeout)
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (ctl *Controller) writePump(ctx context.Context, connID string, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", connID).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", connID).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", connID).Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, connID string, room *core.Room, p *core.Participant, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", connID).Str("id", p.ID()).Msg("readPump closing")
		room.Leave(p)
		ctl.Router.Release(p.ID())
		c.Close(websocket.CloseNormalClosure, "")
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", connID).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("conn", connID).Str("id", p.ID()).Msg("readPump read error")
				return
			}
			// Synchronous dispatch keeps this connection's messages in
			// arrival order through the relay.
			ctl.Router.Dispatch(room, p, data)
		}
	}
}

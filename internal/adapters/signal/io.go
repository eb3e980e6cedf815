package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/domain"
	"github.com/dkeye/Signal/internal/protocol"
)

type handlerFunc func(ctl *SignalWSController, pid domain.PeerID, data []byte) error

var handlers = map[string]handlerFunc{
	protocol.EventJoin:       (*SignalWSController).handleJoin,
	protocol.EventLeave:      (*SignalWSController).handleLeave,
	protocol.EventRelaySDP:   (*SignalWSController).handleRelaySDP,
	protocol.EventRelayICE:   (*SignalWSController).handleRelayICE,
	protocol.EventPeerStatus: (*SignalWSController).handlePeerStatus,
	protocol.EventDisconnect: (*SignalWSController).handleDisconnect,
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.settings.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.settings.WriteWait)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(pid domain.PeerID, c *WsSignalConn) {
	reason := "transport close"
	defer func() {
		ctl.Orch.Disconnect(pid, reason)
		ctl.Limiter.Forget(pid)
		// removePeer frames queued for this peer by Disconnect are dropped here.
		c.Close()
	}()

	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.settings.PongWait))
	}
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				reason = "transport error"
				log.Warn().Err(err).Str("module", "signal").Str("peer_id", string(pid)).Msg("readPump read error")
			}
			return
		}
		if !ctl.Limiter.Allow(pid) {
			log.Warn().Str("module", "signal").Str("peer_id", string(pid)).Msg("rate limited, message dropped")
			continue
		}

		err = ctl.dispatch(pid, data)
		var dr disconnectRequest
		if errors.As(err, &dr) {
			reason = dr.reason
			return
		}
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("peer_id", string(pid)).Msg("message ignored")
		}
	}
}

func (ctl *SignalWSController) dispatch(pid domain.PeerID, data []byte) error {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	h, ok := handlers[env.Type]
	if !ok {
		return fmt.Errorf("unknown signal %q", env.Type)
	}
	return h(ctl, pid, data)
}

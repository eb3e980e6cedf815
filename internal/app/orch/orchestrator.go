package orch

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/app"
	"github.com/dkeye/Signal/internal/core"
	"github.com/dkeye/Signal/internal/domain"
)

// Orchestrator runs the signaling protocol on top of the Registry.
// Handlers are serialized: each one finishes its registry change and
// queues all of its outbound frames before the next one starts.
type Orchestrator struct {
	Registry    *app.Registry
	Policy      app.Policy
	ICEServers  []webrtc.ICEServer
	RedirectURL string
	SurveyURL   string

	mu sync.Mutex
}

func (o *Orchestrator) iceServers() []webrtc.ICEServer {
	if o.ICEServers == nil {
		return []webrtc.ICEServer{}
	}
	return o.ICEServers
}

// send queues v for pid without waiting for delivery. Failures are swallowed.
func (o *Orchestrator) send(pid domain.PeerID, conn core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal outbound")
		return
	}
	if err := conn.TrySend(b); err != nil {
		o.onSendError(pid, conn, err)
	}
}

// sendTo reports false if pid has no live connection.
func (o *Orchestrator) sendTo(pid domain.PeerID, v any) bool {
	conn, ok := o.Registry.Conn(pid)
	if !ok {
		return false
	}
	o.send(pid, conn, v)
	return true
}

func (o *Orchestrator) onSendError(pid domain.PeerID, conn core.SignalConnection, err error) {
	if !errors.Is(err, core.ErrBackpressure) || o.Policy == nil {
		log.Debug().Err(err).Str("module", "orch").Str("peer_id", string(pid)).Msg("send dropped")
		return
	}
	switch o.Policy.OnBackPressure(pid) {
	case app.KickMember:
		log.Warn().Str("module", "orch").Str("peer_id", string(pid)).Msg("slow peer kicked")
		conn.Close()
	case app.DropFrame, app.NoAction:
		log.Debug().Str("module", "orch").Str("peer_id", string(pid)).Msg("frame dropped on backpressure")
	}
}

func (o *Orchestrator) logRooms(op string) {
	log.Info().Str("module", "orch").Str("op", op).Interface("rooms", o.Registry.RoomSnapshot()).Msg("active rooms and peers count")
}

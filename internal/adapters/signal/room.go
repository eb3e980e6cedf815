package signal

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/domain"
	"github.com/dkeye/Signal/internal/protocol"
	"github.com/dkeye/Signal/internal/sanitize"
)

func (ctl *SignalWSController) handleJoin(pid domain.PeerID, data []byte) error {
	var p protocol.Join
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad join payload: %w", err)
	}
	channel := domain.RoomID(sanitize.String(p.Channel))
	info := sanitize.PeerInfo(p.PeerInfo)

	log.Info().Str("module", "signal").Str("peer_id", string(pid)).Str("room_id", string(channel)).Str("name", info.Name()).Msg("join")
	ctl.Orch.Join(pid, channel, info)
	return nil
}

// handleLeave removes the peer from one channel; the connection stays open.
func (ctl *SignalWSController) handleLeave(pid domain.PeerID, data []byte) error {
	var p protocol.Leave
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad leave payload: %w", err)
	}
	channel := domain.RoomID(sanitize.String(p.Channel))

	log.Info().Str("module", "signal").Str("peer_id", string(pid)).Str("room_id", string(channel)).Msg("leave")
	ctl.Orch.Leave(pid, channel)
	return nil
}

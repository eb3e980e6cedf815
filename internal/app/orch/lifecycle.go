package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/core"
	"github.com/dkeye/Signal/internal/domain"
	"github.com/dkeye/Signal/internal/protocol"
)

// Connect registers a new transport endpoint under a fresh peer id.
func (o *Orchestrator) Connect(conn core.SignalConnection) domain.PeerID {
	o.mu.Lock()
	defer o.mu.Unlock()

	pid := domain.NewPeerID()
	o.Registry.RegisterPeer(pid, conn)
	log.Info().Str("module", "orch").Str("peer_id", string(pid)).Msg("connection accepted")
	return pid
}

// Disconnect leaves every room pid is in, notifying the remaining members,
// then unregisters pid. Calling it again for the same pid does nothing.
func (o *Orchestrator) Disconnect(pid domain.PeerID, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, rid := range o.Registry.RoomsOf(pid) {
		if o.Registry.LeaveRoom(rid, pid) {
			o.notifyDeparture(pid, rid)
		}
	}
	o.Registry.UnregisterPeer(pid)
	o.logRooms(protocol.EventDisconnect)
	log.Info().Str("module", "orch").Str("peer_id", string(pid)).Str("reason", reason).Msg("disconnected")
}

// CloseAll closes every transport. Each connection then runs its own
// Disconnect from its read loop.
func (o *Orchestrator) CloseAll() {
	conns := o.Registry.Connections()
	for _, c := range conns {
		c.Close()
	}
	log.Info().Str("module", "orch").Int("connections", len(conns)).Msg("closed all connections")
}

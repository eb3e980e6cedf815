package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/domain"
	"github.com/dkeye/Signal/internal/protocol"
)

// Join adds pid to rid and pairs it with every existing member. The newcomer
// is always the one told to create the offer, so each pair negotiates once.
func (o *Orchestrator) Join(pid domain.PeerID, rid domain.RoomID, info domain.PeerInfo) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if rid == "" {
		log.Warn().Str("module", "orch").Str("peer_id", string(pid)).Msg("join without channel")
		return
	}
	if !o.Registry.JoinRoom(rid, pid, info) {
		return
	}
	o.logRooms(protocol.EventJoin)

	self, ok := o.Registry.Conn(pid)
	if !ok {
		return
	}
	peers := o.Registry.Peers(rid)
	for _, m := range o.Registry.Members(rid) {
		if m.ID == pid {
			continue
		}
		o.send(m.ID, m.Conn, protocol.AddPeer{
			Type:              protocol.EventAddPeer,
			PeerID:            pid,
			Peers:             peers,
			ShouldCreateOffer: false,
			IceServers:        o.iceServers(),
		})
		o.send(pid, self, protocol.AddPeer{
			Type:              protocol.EventAddPeer,
			PeerID:            m.ID,
			Peers:             peers,
			ShouldCreateOffer: true,
			IceServers:        o.iceServers(),
		})
		log.Debug().Str("module", "orch").Str("peer_id", string(pid)).Str("to", string(m.ID)).Msg("addPeer")
	}

	o.send(pid, self, protocol.ServerInfo{
		Type:           protocol.EventServerInfo,
		RoomPeersCount: o.Registry.MemberCount(rid),
		RedirectURL:    o.RedirectURL,
		SurveyURL:      o.SurveyURL,
	})
}

// Leave removes pid from rid only; other rooms are untouched.
func (o *Orchestrator) Leave(pid domain.PeerID, rid domain.RoomID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.Registry.LeaveRoom(rid, pid) {
		return
	}
	o.logRooms(protocol.EventLeave)
	o.notifyDeparture(pid, rid)
}

// notifyDeparture tells the remaining members of rid that pid is gone and
// tells pid about each of them. pid must already be out of the room.
func (o *Orchestrator) notifyDeparture(pid domain.PeerID, rid domain.RoomID) {
	for _, m := range o.Registry.Members(rid) {
		o.send(m.ID, m.Conn, protocol.RemovePeer{Type: protocol.EventRemovePeer, PeerID: pid})
		o.sendTo(pid, protocol.RemovePeer{Type: protocol.EventRemovePeer, PeerID: m.ID})
		log.Debug().Str("module", "orch").Str("peer_id", string(pid)).Str("to", string(m.ID)).Msg("removePeer")
	}
}

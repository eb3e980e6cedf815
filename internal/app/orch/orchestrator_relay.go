package orch

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/domain"
	"github.com/dkeye/Signal/internal/protocol"
)

// RelaySessionDescription forwards sd verbatim. Unknown targets are dropped.
func (o *Orchestrator) RelaySessionDescription(from, to domain.PeerID, sd json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sent := o.sendTo(to, protocol.SessionDescription{
		Type:               protocol.EventSessionDescription,
		PeerID:             from,
		SessionDescription: sd,
	})
	log.Debug().
		Str("module", "orch").
		Str("peer_id", string(from)).
		Str("to", string(to)).
		Str("sdp_type", sdpType(sd)).
		Bool("delivered", sent).
		Msg("relay session description")
}

// RelayICECandidate forwards the candidate verbatim. Unknown targets are dropped.
func (o *Orchestrator) RelayICECandidate(from, to domain.PeerID, candidate json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sent := o.sendTo(to, protocol.ICECandidate{
		Type:         protocol.EventICECandidate,
		PeerID:       from,
		IceCandidate: candidate,
	})
	log.Debug().Str("module", "orch").Str("peer_id", string(from)).Str("to", string(to)).Bool("delivered", sent).Msg("relay ice candidate")
}

// PeerStatus updates the media flag of every member of rid named name and
// tells every other member about it.
func (o *Orchestrator) PeerStatus(from domain.PeerID, rid domain.RoomID, name, element string, active bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if el, err := domain.ParseMediaElement(element); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("peer_id", string(from)).Msg("peer status element")
	} else {
		n := o.Registry.UpdateMediaByName(rid, name, el, active)
		log.Debug().Str("module", "orch").Str("room_id", string(rid)).Str("peer_name", name).Int("updated", n).Msg("peer status")
	}

	msg := protocol.PeerStatus{
		Type:     protocol.EventPeerStatus,
		PeerID:   from,
		PeerName: name,
		Element:  element,
		Active:   active,
	}
	for _, m := range o.Registry.Members(rid) {
		if m.ID == from {
			continue
		}
		o.send(m.ID, m.Conn, msg)
	}
}

func sdpType(sd json.RawMessage) string {
	var v struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(sd, &v); err != nil {
		return ""
	}
	return v.Type
}

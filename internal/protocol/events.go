// Package protocol holds the signaling wire format: one JSON object per
// WebSocket text frame, discriminated by "type".
package protocol

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Signal/internal/domain"
)

// Inbound events.
const (
	EventJoin       = "join"
	EventLeave      = "leave"
	EventRelaySDP   = "relaySDP"
	EventRelayICE   = "relayICE"
	EventPeerStatus = "peerStatus"
	EventDisconnect = "disconnect"
)

// Outbound events.
const (
	EventServerInfo         = "serverInfo"
	EventAddPeer            = "addPeer"
	EventRemovePeer         = "removePeer"
	EventSessionDescription = "sessionDescription"
	EventICECandidate       = "iceCandidate"
)

type Envelope struct {
	Type string `json:"type"`
}

type Join struct {
	Channel  string          `json:"channel"`
	PeerInfo domain.PeerInfo `json:"peerInfo"`
}

type Leave struct {
	Channel string `json:"channel"`
}

type RelaySDP struct {
	PeerID             domain.PeerID   `json:"peerId"`
	SessionDescription json.RawMessage `json:"sessionDescription"`
}

type RelayICE struct {
	PeerID       domain.PeerID   `json:"peerId"`
	IceCandidate json.RawMessage `json:"iceCandidate"`
}

type PeerStatusUpdate struct {
	RoomID   string `json:"roomId"`
	PeerName string `json:"peerName"`
	Element  string `json:"element"`
	Active   bool   `json:"active"`
}

type Disconnect struct {
	Reason string `json:"reason"`
}

type ServerInfo struct {
	Type           string `json:"type"`
	RoomPeersCount int    `json:"roomPeersCount"`
	RedirectURL    string `json:"redirectURL,omitempty"`
	SurveyURL      string `json:"surveyURL,omitempty"`
}

type AddPeer struct {
	Type              string                            `json:"type"`
	PeerID            domain.PeerID                     `json:"peerId"`
	Peers             map[domain.PeerID]domain.PeerInfo `json:"peers"`
	ShouldCreateOffer bool                              `json:"shouldCreateOffer"`
	IceServers        []webrtc.ICEServer                `json:"iceServers"`
}

type RemovePeer struct {
	Type   string        `json:"type"`
	PeerID domain.PeerID `json:"peerId"`
}

type SessionDescription struct {
	Type               string          `json:"type"`
	PeerID             domain.PeerID   `json:"peerId"`
	SessionDescription json.RawMessage `json:"sessionDescription"`
}

type ICECandidate struct {
	Type         string          `json:"type"`
	PeerID       domain.PeerID   `json:"peerId"`
	IceCandidate json.RawMessage `json:"iceCandidate"`
}

type PeerStatus struct {
	Type     string        `json:"type"`
	PeerID   domain.PeerID `json:"peerId"`
	PeerName string        `json:"peerName"`
	Element  string        `json:"element"`
	Active   bool          `json:"active"`
}

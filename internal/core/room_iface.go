package core

import (
	"github.com/dkeye/Signal/internal/domain"
)

// Member is a read-only view of one room member and its transport endpoint.
type Member struct {
	ID   domain.PeerID
	Conn SignalConnection
	Info domain.PeerInfo
}

type RoomInfo struct {
	RoomID     domain.RoomID `json:"roomId"`
	PeersCount int           `json:"peersCount"`
}

package signal

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Signal/internal/domain"
	"github.com/dkeye/Signal/internal/protocol"
	"github.com/dkeye/Signal/internal/sanitize"
)

func (ctl *SignalWSController) handlePeerStatus(pid domain.PeerID, data []byte) error {
	var p protocol.PeerStatusUpdate
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad peerStatus payload: %w", err)
	}
	ctl.Orch.PeerStatus(
		pid,
		domain.RoomID(sanitize.String(p.RoomID)),
		sanitize.String(p.PeerName),
		sanitize.String(p.Element),
		p.Active,
	)
	return nil
}

package signal

import (
	"encoding/json"

	"github.com/dkeye/Signal/internal/domain"
	"github.com/dkeye/Signal/internal/protocol"
	"github.com/dkeye/Signal/internal/sanitize"
)

// disconnectRequest stops the read loop of the peer that sent it.
type disconnectRequest struct {
	reason string
}

func (d disconnectRequest) Error() string {
	return "client requested disconnect: " + d.reason
}

func (ctl *SignalWSController) handleDisconnect(_ domain.PeerID, data []byte) error {
	var p protocol.Disconnect
	_ = json.Unmarshal(data, &p)
	reason := sanitize.String(p.Reason)
	if reason == "" {
		reason = "client disconnect"
	}
	return disconnectRequest{reason: reason}
}

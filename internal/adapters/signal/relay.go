package signal

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Signal/internal/domain"
	"github.com/dkeye/Signal/internal/protocol"
)

// SDP and ICE payloads are opaque and forwarded untouched.

func (ctl *SignalWSController) handleRelaySDP(pid domain.PeerID, data []byte) error {
	var p protocol.RelaySDP
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad relaySDP payload: %w", err)
	}
	ctl.Orch.RelaySessionDescription(pid, p.PeerID, p.SessionDescription)
	return nil
}

func (ctl *SignalWSController) handleRelayICE(pid domain.PeerID, data []byte) error {
	var p protocol.RelayICE
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bad relayICE payload: %w", err)
	}
	ctl.Orch.RelayICECandidate(pid, p.PeerID, p.IceCandidate)
	return nil
}

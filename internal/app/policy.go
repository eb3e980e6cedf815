package app

import (
	"fmt"

	"github.com/dkeye/Signal/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a peer whose outbound queue is full.
// It never undoes the registry change that produced the message.
type Policy interface {
	OnBackPressure(pid domain.PeerID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.PeerID) BackpressureAction {
	return p.Action
}

func ParseBackpressureAction(s string) (BackpressureAction, error) {
	switch s {
	case "", "drop":
		return DropFrame, nil
	case "kick":
		return KickMember, nil
	default:
		return NoAction, fmt.Errorf("unknown backpressure policy %q", s)
	}
}

// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
)

var ErrUnknownElement = errors.New("unknown media element")

// PeerID identifies one signaling connection. Fresh per connection, never reused.
type PeerID string

func NewPeerID() PeerID {
	return PeerID(uuid.NewString())
}

type MediaElement string

const (
	ElementVideo  MediaElement = "video"
	ElementAudio  MediaElement = "audio"
	ElementScreen MediaElement = "screen"
)

func ParseMediaElement(s string) (MediaElement, error) {
	switch e := MediaElement(s); e {
	case ElementVideo, ElementAudio, ElementScreen:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownElement, s)
	}
}

func (e MediaElement) infoKey() string {
	switch e {
	case ElementVideo:
		return "peerVideo"
	case ElementAudio:
		return "peerAudio"
	case ElementScreen:
		return "peerScreen"
	}
	return ""
}

// PeerInfo is the metadata a peer hands over on join. Only the display name
// and the media flags are interpreted; every other field is carried through.
type PeerInfo map[string]any

func (p PeerInfo) Name() string {
	name, _ := p["peerName"].(string)
	return name
}

func (p PeerInfo) Media(e MediaElement) bool {
	active, _ := p[e.infoKey()].(bool)
	return active
}

func (p PeerInfo) SetMedia(e MediaElement, active bool) {
	if key := e.infoKey(); key != "" {
		p[key] = active
	}
}

// Clone copies the top level. Nested values are never mutated in place.
func (p PeerInfo) Clone() PeerInfo {
	if p == nil {
		return PeerInfo{}
	}
	return maps.Clone(p)
}

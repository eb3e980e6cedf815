package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMediaElement(t *testing.T) {
	for _, s := range []string{"video", "audio", "screen"} {
		e, err := ParseMediaElement(s)
		require.NoError(t, err)
		assert.Equal(t, MediaElement(s), e)
	}

	_, err := ParseMediaElement("hologram")
	require.ErrorIs(t, err, ErrUnknownElement)
}

func TestPeerInfoFields(t *testing.T) {
	info := PeerInfo{"peerName": "alice", "peerVideo": false, "userAgent": "test"}

	assert.Equal(t, "alice", info.Name())
	assert.False(t, info.Media(ElementVideo))

	info.SetMedia(ElementVideo, true)
	info.SetMedia(ElementScreen, true)
	assert.True(t, info.Media(ElementVideo))
	assert.True(t, info.Media(ElementScreen))
	assert.False(t, info.Media(ElementAudio))
	assert.Equal(t, "test", info["userAgent"])
}

func TestPeerInfoClone(t *testing.T) {
	info := PeerInfo{"peerName": "bob"}
	cp := info.Clone()
	cp.SetMedia(ElementAudio, true)

	assert.False(t, info.Media(ElementAudio))
	assert.NotNil(t, PeerInfo(nil).Clone())
	assert.Equal(t, "", PeerInfo(nil).Name())
}

func TestNewPeerIDUnique(t *testing.T) {
	assert.NotEqual(t, NewPeerID(), NewPeerID())
}

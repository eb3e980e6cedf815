package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Signal/internal/core"
	"github.com/dkeye/Signal/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func newTestRegistry(t *testing.T, peers ...domain.PeerID) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, pid := range peers {
		r.RegisterPeer(pid, nopConn{})
	}
	return r
}

func TestRoomExistsOnlyWithMembers(t *testing.T) {
	r := newTestRegistry(t, "a", "b")

	assert.False(t, r.HasRoom("lobby"))
	require.True(t, r.JoinRoom("lobby", "a", domain.PeerInfo{"peerName": "alice"}))
	require.True(t, r.JoinRoom("lobby", "b", domain.PeerInfo{"peerName": "bob"}))
	assert.True(t, r.HasRoom("lobby"))

	require.True(t, r.LeaveRoom("lobby", "a"))
	assert.True(t, r.HasRoom("lobby"))
	assert.Equal(t, 1, r.MemberCount("lobby"))

	require.True(t, r.LeaveRoom("lobby", "b"))
	assert.False(t, r.HasRoom("lobby"))
	assert.Empty(t, r.RoomSnapshot())
}

func TestRejoinAfterEmptyStartsFresh(t *testing.T) {
	r := newTestRegistry(t, "a")

	require.True(t, r.JoinRoom("lobby", "a", domain.PeerInfo{"peerName": "alice", "peerVideo": true}))
	require.True(t, r.LeaveRoom("lobby", "a"))
	require.True(t, r.JoinRoom("lobby", "a", domain.PeerInfo{"peerName": "alice"}))

	peers := r.Peers("lobby")
	require.Len(t, peers, 1)
	assert.False(t, peers["a"].Media(domain.ElementVideo))
}

func TestDoubleJoinIsNoop(t *testing.T) {
	r := newTestRegistry(t, "a")

	require.True(t, r.JoinRoom("lobby", "a", domain.PeerInfo{"peerName": "alice"}))
	assert.False(t, r.JoinRoom("lobby", "a", domain.PeerInfo{"peerName": "mallory"}))

	assert.Equal(t, 1, r.MemberCount("lobby"))
	assert.Equal(t, "alice", r.Peers("lobby")["a"].Name())
}

func TestJoinUnregisteredPeer(t *testing.T) {
	r := newTestRegistry(t)

	assert.False(t, r.JoinRoom("lobby", "ghost", nil))
	assert.False(t, r.HasRoom("lobby"))
}

func TestLeaveNonMember(t *testing.T) {
	r := newTestRegistry(t, "a", "b")
	require.True(t, r.JoinRoom("lobby", "a", nil))

	assert.False(t, r.LeaveRoom("lobby", "b"))
	assert.False(t, r.LeaveRoom("nowhere", "a"))
	assert.Equal(t, 1, r.MemberCount("lobby"))
}

func TestMembersInJoinOrder(t *testing.T) {
	r := newTestRegistry(t, "c", "a", "b")
	for _, pid := range []domain.PeerID{"c", "a", "b"} {
		require.True(t, r.JoinRoom("lobby", pid, nil))
	}

	var ids []domain.PeerID
	for _, m := range r.Members("lobby") {
		ids = append(ids, m.ID)
		assert.NotNil(t, m.Conn)
	}
	assert.Equal(t, []domain.PeerID{"c", "a", "b"}, ids)
}

func TestUnregisterPeerLeavesAllRooms(t *testing.T) {
	r := newTestRegistry(t, "a", "b")
	require.True(t, r.JoinRoom("r1", "a", nil))
	require.True(t, r.JoinRoom("r2", "a", nil))
	require.True(t, r.JoinRoom("r2", "b", nil))

	assert.Equal(t, []domain.RoomID{"r1", "r2"}, r.RoomsOf("a"))

	r.UnregisterPeer("a")

	assert.False(t, r.HasRoom("r1"))
	assert.Equal(t, 1, r.MemberCount("r2"))
	_, ok := r.Conn("a")
	assert.False(t, ok)
	assert.Nil(t, r.RoomsOf("a"))

	r.UnregisterPeer("a")
	assert.Equal(t, 1, r.PeerCount())
}

func TestUnregisterPeerRemovesStrayMembership(t *testing.T) {
	r := newTestRegistry(t, "a", "b")
	require.True(t, r.JoinRoom("lobby", "b", nil))

	// simulate a partial update: room knows "a", peer entry does not
	r.rooms.getOrCreate("lobby").Add("a", nil)
	r.rooms.getOrCreate("orphan").Add("a", nil)

	r.UnregisterPeer("a")

	assert.Equal(t, 1, r.MemberCount("lobby"))
	assert.False(t, r.HasRoom("orphan"))
	assert.Equal(t, []core.RoomInfo{{RoomID: "lobby", PeersCount: 1}}, r.RoomSnapshot())
}

func TestJoinRoomReplacesStaleMembership(t *testing.T) {
	r := newTestRegistry(t, "a", "b")
	require.True(t, r.JoinRoom("lobby", "b", nil))
	r.rooms.getOrCreate("lobby").Add("a", domain.PeerInfo{"peerName": "old"})

	require.True(t, r.JoinRoom("lobby", "a", domain.PeerInfo{"peerName": "alice"}))

	assert.Equal(t, 2, r.MemberCount("lobby"))
	assert.Equal(t, []domain.RoomID{"lobby"}, r.RoomsOf("a"))
	assert.Equal(t, "alice", r.Peers("lobby")["a"].Name())
	members := r.Members("lobby")
	require.Len(t, members, 2)
	assert.Equal(t, domain.PeerID("a"), members[1].ID)

	assert.False(t, r.JoinRoom("lobby", "a", nil))
}

func TestUpdateMediaByName(t *testing.T) {
	r := newTestRegistry(t, "a1", "a2", "b")
	require.True(t, r.JoinRoom("lobby", "a1", domain.PeerInfo{"peerName": "alice"}))
	require.True(t, r.JoinRoom("lobby", "a2", domain.PeerInfo{"peerName": "alice"}))
	require.True(t, r.JoinRoom("lobby", "b", domain.PeerInfo{"peerName": "bob"}))

	n := r.UpdateMediaByName("lobby", "alice", domain.ElementVideo, true)
	assert.Equal(t, 2, n)

	peers := r.Peers("lobby")
	assert.True(t, peers["a1"].Media(domain.ElementVideo))
	assert.True(t, peers["a2"].Media(domain.ElementVideo))
	assert.False(t, peers["b"].Media(domain.ElementVideo))

	assert.Zero(t, r.UpdateMediaByName("missing", "alice", domain.ElementVideo, true))
}

func TestSnapshotsAreCopies(t *testing.T) {
	r := newTestRegistry(t, "a")
	require.True(t, r.JoinRoom("lobby", "a", domain.PeerInfo{"peerName": "alice"}))

	r.Peers("lobby")["a"].SetMedia(domain.ElementAudio, true)
	r.Members("lobby")[0].Info.SetMedia(domain.ElementAudio, true)

	assert.False(t, r.Peers("lobby")["a"].Media(domain.ElementAudio))
}

func TestRoomSnapshotSorted(t *testing.T) {
	r := newTestRegistry(t, "a", "b")
	require.True(t, r.JoinRoom("zeta", "a", nil))
	require.True(t, r.JoinRoom("alpha", "a", nil))
	require.True(t, r.JoinRoom("alpha", "b", nil))

	assert.Equal(t, []core.RoomInfo{
		{RoomID: "alpha", PeersCount: 2},
		{RoomID: "zeta", PeersCount: 1},
	}, r.RoomSnapshot())
}

func TestParseBackpressureAction(t *testing.T) {
	a, err := ParseBackpressureAction("")
	require.NoError(t, err)
	assert.Equal(t, DropFrame, a)

	a, err = ParseBackpressureAction("kick")
	require.NoError(t, err)
	assert.Equal(t, KickMember, a)

	_, err = ParseBackpressureAction("explode")
	assert.Error(t, err)
}

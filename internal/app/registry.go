package app

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/core"
	"github.com/dkeye/Signal/internal/domain"
)

type peerEntry struct {
	Conn  core.SignalConnection
	Rooms map[domain.RoomID]struct{}
}

// Registry is the process-wide peer and room state.
type Registry struct {
	mu    sync.RWMutex
	peers map[domain.PeerID]*peerEntry
	rooms roomTable
}

func NewRegistry() *Registry {
	return &Registry{
		peers: make(map[domain.PeerID]*peerEntry),
		rooms: newRoomTable(),
	}
}

func (r *Registry) RegisterPeer(pid domain.PeerID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.peers[pid]; ok {
		e.Conn = conn
		log.Warn().Str("module", "app.registry").Str("peer_id", string(pid)).Msg("peer re-registered")
		return
	}
	r.peers[pid] = &peerEntry{Conn: conn, Rooms: make(map[domain.RoomID]struct{})}
	log.Debug().Str("module", "app.registry").Str("peer_id", string(pid)).Msg("registered peer")
}

// JoinRoom adds pid to rid, creating the room on first join.
// It reports false without touching state if pid is unknown or already a member.
func (r *Registry) JoinRoom(rid domain.RoomID, pid domain.PeerID, info domain.PeerInfo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.peers[pid]
	if !ok {
		log.Warn().Str("module", "app.registry").Str("peer_id", string(pid)).Str("room_id", string(rid)).Msg("join from unregistered peer")
		return false
	}
	if _, joined := e.Rooms[rid]; joined {
		log.Debug().Str("module", "app.registry").Str("peer_id", string(pid)).Str("room_id", string(rid)).Msg("already joined")
		return false
	}
	room := r.rooms.getOrCreate(rid)
	if !room.Add(pid, info.Clone()) {
		// membership survived an earlier partial cleanup; replace it so the
		// join proceeds as a fresh one
		room.Remove(pid)
		room.Add(pid, info.Clone())
		log.Warn().Str("module", "app.registry").Str("peer_id", string(pid)).Str("room_id", string(rid)).Msg("stale membership replaced")
	}
	e.Rooms[rid] = struct{}{}
	log.Info().Str("module", "app.registry").Str("peer_id", string(pid)).Str("room_id", string(rid)).Int("members", room.Len()).Msg("joined room")
	return true
}

// LeaveRoom removes pid from rid and deletes the room if it became empty.
func (r *Registry) LeaveRoom(rid domain.RoomID, pid domain.PeerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(rid, pid)
}

func (r *Registry) leaveLocked(rid domain.RoomID, pid domain.PeerID) bool {
	if e, ok := r.peers[pid]; ok {
		delete(e.Rooms, rid)
	}
	room, ok := r.rooms.get(rid)
	if !ok || !room.Remove(pid) {
		log.Debug().Str("module", "app.registry").Str("peer_id", string(pid)).Str("room_id", string(rid)).Msg("not a member")
		return false
	}
	log.Info().Str("module", "app.registry").Str("peer_id", string(pid)).Str("room_id", string(rid)).Int("members", room.Len()).Msg("left room")
	if r.rooms.dropIfEmpty(rid) {
		log.Info().Str("module", "app.registry").Str("room_id", string(rid)).Msg("room is now empty and removed")
	}
	return true
}

// UnregisterPeer removes pid from every room and from the peer map.
// Safe to call repeatedly; it rescans all rooms for stray membership.
func (r *Registry) UnregisterPeer(pid domain.PeerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.peers[pid]; ok {
		for _, rid := range sortedRoomIDs(e.Rooms) {
			r.leaveLocked(rid, pid)
		}
	}
	for rid, room := range r.rooms.rooms {
		if room.Has(pid) {
			log.Warn().Str("module", "app.registry").Str("peer_id", string(pid)).Str("room_id", string(rid)).Msg("cleaned up stray membership")
			r.leaveLocked(rid, pid)
		}
	}
	if _, ok := r.peers[pid]; ok {
		delete(r.peers, pid)
		log.Debug().Str("module", "app.registry").Str("peer_id", string(pid)).Msg("unregistered peer")
	}
}

func (r *Registry) Conn(pid domain.PeerID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.peers[pid]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

// RoomsOf lists the rooms pid has joined, sorted by id.
func (r *Registry) RoomsOf(pid domain.PeerID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.peers[pid]
	if !ok {
		return nil
	}
	return sortedRoomIDs(e.Rooms)
}

// Members returns connected members of rid in join order.
func (r *Registry) Members(rid domain.RoomID) []core.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms.get(rid)
	if !ok {
		return nil
	}
	out := make([]core.Member, 0, room.Len())
	for _, pid := range room.IDs() {
		e, ok := r.peers[pid]
		if !ok {
			continue
		}
		info, _ := room.Info(pid)
		out = append(out, core.Member{ID: pid, Conn: e.Conn, Info: info.Clone()})
	}
	return out
}

// Peers returns the peer-info snapshot of rid keyed by peer id.
func (r *Registry) Peers(rid domain.RoomID) map[domain.PeerID]domain.PeerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domain.PeerID]domain.PeerInfo)
	room, ok := r.rooms.get(rid)
	if !ok {
		return out
	}
	for _, pid := range room.IDs() {
		info, _ := room.Info(pid)
		out[pid] = info.Clone()
	}
	return out
}

func (r *Registry) MemberCount(rid domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if room, ok := r.rooms.get(rid); ok {
		return room.Len()
	}
	return 0
}

func (r *Registry) HasRoom(rid domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms.get(rid)
	return ok
}

func (r *Registry) PeerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// UpdateMediaByName sets a media flag on every member of rid whose display
// name equals name. Matching is by name, so peers sharing a name all change.
func (r *Registry) UpdateMediaByName(rid domain.RoomID, name string, el domain.MediaElement, active bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms.get(rid)
	if !ok {
		return 0
	}
	updated := 0
	for _, pid := range room.IDs() {
		info, _ := room.Info(pid)
		if info == nil || info.Name() != name {
			continue
		}
		info.SetMedia(el, active)
		updated++
	}
	return updated
}

// RoomSnapshot is for logging and observability only.
func (r *Registry) RoomSnapshot() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms.rooms))
	for id, room := range r.rooms.rooms {
		out = append(out, core.RoomInfo{RoomID: id, PeersCount: room.Len()})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.RoomID, b.RoomID) })
	return out
}

// Connections returns every registered transport endpoint.
func (r *Registry) Connections() []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(r.peers))
	for _, e := range r.peers {
		out = append(out, e.Conn)
	}
	return out
}

func sortedRoomIDs(set map[domain.RoomID]struct{}) []domain.RoomID {
	return slices.Sorted(maps.Keys(set))
}

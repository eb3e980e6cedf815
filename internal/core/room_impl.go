package core

import (
	"slices"

	"github.com/dkeye/Signal/internal/domain"
)

// Room is the membership set of one channel, kept in join order so fan-out
// is deterministic. Not safe for concurrent use; the owning registry guards it.
type Room struct {
	ID      domain.RoomID
	order   []domain.PeerID
	members map[domain.PeerID]domain.PeerInfo
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{
		ID:      id,
		members: make(map[domain.PeerID]domain.PeerInfo),
	}
}

func (r *Room) Len() int { return len(r.members) }

func (r *Room) Has(pid domain.PeerID) bool {
	_, ok := r.members[pid]
	return ok
}

// Add reports false if pid is already a member.
func (r *Room) Add(pid domain.PeerID, info domain.PeerInfo) bool {
	if r.Has(pid) {
		return false
	}
	r.members[pid] = info
	r.order = append(r.order, pid)
	return true
}

func (r *Room) Remove(pid domain.PeerID) bool {
	if !r.Has(pid) {
		return false
	}
	delete(r.members, pid)
	r.order = slices.DeleteFunc(r.order, func(id domain.PeerID) bool { return id == pid })
	return true
}

func (r *Room) Info(pid domain.PeerID) (domain.PeerInfo, bool) {
	info, ok := r.members[pid]
	return info, ok
}

// IDs returns member ids in join order.
func (r *Room) IDs() []domain.PeerID {
	return slices.Clone(r.order)
}

package app

import (
	"github.com/dkeye/Signal/internal/core"
	"github.com/dkeye/Signal/internal/domain"
)

// roomTable maps room ids to live rooms. A room with no members is never kept.
// Callers hold the registry lock.
type roomTable struct {
	rooms map[domain.RoomID]*core.Room
}

func newRoomTable() roomTable {
	return roomTable{rooms: make(map[domain.RoomID]*core.Room)}
}

func (t roomTable) get(id domain.RoomID) (*core.Room, bool) {
	room, ok := t.rooms[id]
	return room, ok
}

func (t roomTable) getOrCreate(id domain.RoomID) *core.Room {
	if room, ok := t.rooms[id]; ok {
		return room
	}
	room := core.NewRoom(id)
	t.rooms[id] = room
	return room
}

// dropIfEmpty deletes the room once its last member is gone.
func (t roomTable) dropIfEmpty(id domain.RoomID) bool {
	room, ok := t.rooms[id]
	if !ok || room.Len() > 0 {
		return false
	}
	delete(t.rooms, id)
	return true
}

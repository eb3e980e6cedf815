package domain

// RoomID is the caller-supplied channel name. Rooms exist only while they have members.
type RoomID string

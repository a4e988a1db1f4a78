// Package domain contains entity without logic, just meta-data
package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionID string

// Position is a point on the room grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Session is the server-side record of one connected participant.
// Owned by the gateway for the lifetime of one connection; registered
// into at most one room.
type Session struct {
	ID          SessionID
	RoomKey     RoomKey
	DisplayName string
	Position    Position
	ConnectedAt time.Time
}

// NewSession avoids raw literals in adapters and keeps construction obvious.
func NewSession(roomKey RoomKey, displayName string, spawn Position) *Session {
	return &Session{
		ID:          SessionID(uuid.NewString()),
		RoomKey:     roomKey,
		DisplayName: displayName,
		Position:    spawn,
		ConnectedAt: time.Now(),
	}
}

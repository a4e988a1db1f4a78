package domain

import "errors"

const MaxRoomKeyLen = 64

var ErrRoomKeyInvalid = errors.New("room key invalid")

// RoomKey names a room. Rooms are created implicitly on first join and
// never explicitly destroyed.
type RoomKey string

func ParseRoomKey(raw string) (RoomKey, error) {
	if len(raw) == 0 || len(raw) > MaxRoomKeyLen {
		return "", ErrRoomKeyInvalid
	}
	return RoomKey(raw), nil
}

package core

import "github.com/dkeye/Plaza/internal/domain"

// Frame is a marshaled outbound message.
type Frame []byte

// SignalConnection abstracts the duplex transport of one participant.
// Owned by the adapter; the adapter must Close() it. TrySend never
// blocks: a full send buffer is reported as an error, not waited out.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PeerDTO is a read-only membership view for wire replies (no transport fields).
type PeerDTO struct {
	SessionID   domain.SessionID `json:"sessionId"`
	DisplayName string           `json:"displayName"`
	Position    domain.Position  `json:"position"`
}

type RoomInfo struct {
	RoomKey     domain.RoomKey `json:"roomKey"`
	MemberCount int            `json:"memberCount"`
}

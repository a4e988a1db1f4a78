package domain

import (
	"errors"
	"time"
)

const MaxChatTextLen = 500

var (
	ErrChatTextEmpty   = errors.New("chat text empty")
	ErrChatTextTooLong = errors.New("chat text too long")
)

// ChatMessage is immutable once constructed and persisted append-only.
// RoomKey stays out of the wire form: the store keys by room already.
type ChatMessage struct {
	RoomKey           RoomKey   `json:"-"`
	SenderDisplayName string    `json:"senderDisplayName"`
	Text              string    `json:"text"`
	Timestamp         time.Time `json:"timestamp"`
}

func NewChatMessage(roomKey RoomKey, sender, text string) (ChatMessage, error) {
	if len(text) == 0 {
		return ChatMessage{}, ErrChatTextEmpty
	}
	if len(text) > MaxChatTextLen {
		return ChatMessage{}, ErrChatTextTooLong
	}
	return ChatMessage{
		RoomKey:           roomKey,
		SenderDisplayName: sender,
		Text:              text,
		Timestamp:         time.Now(),
	}, nil
}

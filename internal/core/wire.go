package core

import (
	"encoding/json"

	"github.com/dkeye/Plaza/internal/domain"
)

// Server → client frame types. Every frame is a JSON object with a
// "type" discriminator.
const (
	TypeJoined         = "joined"
	TypePresenceUpdate = "presenceUpdate"
	TypeMemberLeft     = "memberLeft"
	TypeChatMessage    = "chatMessage"
	TypeChatHistory    = "chatHistory"
	TypePong           = "pong"
)

type JoinedFrame struct {
	Type  string          `json:"type"`
	Spawn domain.Position `json:"spawn"`
	Peers []PeerDTO       `json:"peers"`
}

type PresenceUpdateFrame struct {
	Type    string    `json:"type"`
	Members []PeerDTO `json:"members"`
}

type MemberLeftFrame struct {
	Type      string           `json:"type"`
	SessionID domain.SessionID `json:"sessionId"`
}

type ChatMessageFrame struct {
	Type string `json:"type"`
	domain.ChatMessage
}

type ChatHistoryFrame struct {
	Type     string               `json:"type"`
	Messages []domain.ChatMessage `json:"messages"`
}

type SignalFrame struct {
	Type    string           `json:"type"`
	From    domain.SessionID `json:"from"`
	Payload json.RawMessage  `json:"payload"`
}

// SignalFrameType maps an envelope kind to its wire discriminator.
func SignalFrameType(kind domain.SignalKind) (string, bool) {
	switch kind {
	case domain.SignalOffer:
		return "signal-offer", true
	case domain.SignalAnswer:
		return "signal-answer", true
	case domain.SignalICECandidate:
		return "signal-ice", true
	}
	return "", false
}

// EncodeFrame marshals an outbound message once so fan-out reuses one buffer.
func EncodeFrame(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}

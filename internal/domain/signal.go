package domain

import "encoding/json"

// SignalKind discriminates peer-connection signaling envelopes.
type SignalKind string

const (
	SignalOffer        SignalKind = "offer"
	SignalAnswer       SignalKind = "answer"
	SignalICECandidate SignalKind = "ice-candidate"
)

// SignalEnvelope carries an opaque signaling payload between two sessions.
// Transient: never persisted and never logged in full.
type SignalEnvelope struct {
	From    SessionID
	To      SessionID
	Kind    SignalKind
	Payload json.RawMessage
}

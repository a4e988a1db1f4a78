package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
	"github.com/dkeye/Plaza/internal/metrics"
)

// Relay forwards opaque signaling envelopes between two named sessions
// of the same room. Exactly one recipient, never the room: private
// offer/answer/ICE payloads must not reach bystanders.
type Relay struct {
	registry *Registry
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{registry: registry}
}

// Deliver resolves both ends against the registry and hands the
// envelope verbatim to the target's connection. A miss (either side
// gone, rooms differ, unknown kind) drops silently: the peer-connection
// protocol above retries on its own. Reports whether delivery was
// attempted, for observability only — the sender never learns.
func (r *Relay) Deliver(env domain.SignalEnvelope) bool {
	frameType, ok := core.SignalFrameType(env.Kind)
	if !ok {
		r.miss(env, "unknown kind")
		return false
	}
	fromRoom, ok := r.registry.RoomOf(env.From)
	if !ok {
		r.miss(env, "sender not in a room")
		return false
	}
	toRoom, ok := r.registry.RoomOf(env.To)
	if !ok || toRoom != fromRoom {
		r.miss(env, "target not in sender's room")
		return false
	}
	conn, ok := r.registry.Peer(toRoom, env.To)
	if !ok {
		r.miss(env, "target gone")
		return false
	}

	frame, err := core.EncodeFrame(core.SignalFrame{
		Type:    frameType,
		From:    env.From,
		Payload: env.Payload,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Msg("encode signal frame")
		return false
	}
	if err := conn.TrySend(frame); err != nil {
		r.miss(env, "target backpressured")
		return false
	}
	metrics.EnvelopesRelayed.Inc()
	return true
}

// Payloads may be large and binary-ish; log ids and kind only.
func (r *Relay) miss(env domain.SignalEnvelope, reason string) {
	metrics.EnvelopesDropped.Inc()
	log.Debug().Str("module", "app.relay").
		Str("from", string(env.From)).Str("to", string(env.To)).
		Str("kind", string(env.Kind)).Str("reason", reason).
		Msg("relay miss")
}

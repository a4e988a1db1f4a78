package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
	"github.com/dkeye/Plaza/internal/metrics"
)

// Broadcaster fans presence state out to room members. Delivery is
// fire-and-forget per recipient: one slow or dead connection loses the
// frame, the rest still get it.
type Broadcaster struct {
	registry *Registry
}

func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// BroadcastSnapshot delivers the room's current membership to every
// member of that room, the originator included.
func (b *Broadcaster) BroadcastSnapshot(roomKey domain.RoomKey) {
	frame, err := core.EncodeFrame(core.PresenceUpdateFrame{
		Type:    core.TypePresenceUpdate,
		Members: b.registry.Snapshot(roomKey),
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("encode presence update")
		return
	}
	b.fanout(roomKey, frame)
}

// NotifyLeft delivers a small "member left" notice so peers can tear
// down per-member signaling/media resources deterministically. The
// leaver is already out of the registry by the time this runs.
func (b *Broadcaster) NotifyLeft(roomKey domain.RoomKey, sid domain.SessionID) {
	frame, err := core.EncodeFrame(core.MemberLeftFrame{
		Type:      core.TypeMemberLeft,
		SessionID: sid,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.presence").Msg("encode member left")
		return
	}
	b.fanout(roomKey, frame)
}

func (b *Broadcaster) fanout(roomKey domain.RoomKey, frame core.Frame) {
	sent, dropped := 0, 0
	for _, m := range b.registry.Members(roomKey) {
		if err := m.Conn.TrySend(frame); err != nil {
			dropped++
			log.Warn().Str("module", "app.presence").Str("sid", string(m.SID)).Err(err).Msg("drop presence frame")
			continue
		}
		sent++
	}
	metrics.BroadcastsSent.Add(float64(sent))
	metrics.BroadcastsDropped.Add(float64(dropped))
	log.Debug().Str("module", "app.presence").Str("room", string(roomKey)).Int("sent", sent).Int("dropped", dropped).Msg("fanout")
}

package app

import (
	"context"
	"sync"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
)

// Orchestrator coordinates the registry with presence, relay, and chat.
// It owns a per-room event lock: a registry mutation and the enqueue of
// its broadcast happen as one ordered step, so members observe join/
// move/leave frames in registry mutation order. Enqueuing is TrySend on
// buffered channels; no network I/O runs under the lock.
type Orchestrator struct {
	Registry *Registry
	Presence *Broadcaster
	Relay    *Relay
	Chat     *Chat

	mu    sync.Mutex
	order map[domain.RoomKey]*sync.Mutex
}

func NewOrchestrator(registry *Registry, presence *Broadcaster, relay *Relay, chat *Chat) *Orchestrator {
	return &Orchestrator{
		Registry: registry,
		Presence: presence,
		Relay:    relay,
		Chat:     chat,
		order:    make(map[domain.RoomKey]*sync.Mutex),
	}
}

func (o *Orchestrator) orderLock(roomKey domain.RoomKey) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.order[roomKey]
	if !ok {
		l = &sync.Mutex{}
		o.order[roomKey] = l
	}
	return l
}

// Join registers the session and announces it. reply gets the peers
// that were already present and must only enqueue the joiner's own
// reply; it runs under the order lock so the joiner sees its reply
// before any presence frame for this or later events.
func (o *Orchestrator) Join(sess *domain.Session, conn core.SignalConnection, reply func(peers []core.PeerDTO)) {
	l := o.orderLock(sess.RoomKey)
	l.Lock()
	defer l.Unlock()

	peers := o.Registry.Snapshot(sess.RoomKey)
	if peers == nil {
		peers = []core.PeerDTO{}
	}
	o.Registry.Join(sess, conn)
	if reply != nil {
		reply(peers)
	}
	o.Presence.BroadcastSnapshot(sess.RoomKey)
}

// Move applies a position update and announces it. A rejected move
// (session no longer in the claimed room) is a silent no-op.
func (o *Orchestrator) Move(sid domain.SessionID, roomKey domain.RoomKey, pos domain.Position) bool {
	l := o.orderLock(roomKey)
	l.Lock()
	defer l.Unlock()

	if !o.Registry.Move(sid, roomKey, pos) {
		return false
	}
	o.Presence.BroadcastSnapshot(roomKey)
	return true
}

// Leave unregisters the session and tells the remaining members, so
// they can release signaling/media state tied to that id.
func (o *Orchestrator) Leave(roomKey domain.RoomKey, sid domain.SessionID) bool {
	l := o.orderLock(roomKey)
	l.Lock()
	defer l.Unlock()

	if _, ok := o.Registry.Leave(roomKey, sid); !ok {
		return false
	}
	o.Chat.Forget(sid)
	o.Presence.NotifyLeft(roomKey, sid)
	return true
}

func (o *Orchestrator) SendChat(roomKey domain.RoomKey, sender *domain.Session, text string) error {
	return o.Chat.Send(roomKey, sender, text)
}

func (o *Orchestrator) ChatHistory(ctx context.Context, roomKey domain.RoomKey) []domain.ChatMessage {
	return o.Chat.Recent(ctx, roomKey)
}

func (o *Orchestrator) RelaySignal(env domain.SignalEnvelope) {
	o.Relay.Deliver(env)
}

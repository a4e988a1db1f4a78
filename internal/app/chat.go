package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
	"github.com/dkeye/Plaza/internal/metrics"
)

var ErrRateLimited = errors.New("chat rate limited")

const (
	appendQueueSize = 256
	appendTimeout   = 5 * time.Second
)

// ChatStore is the external durable message store boundary.
// Recent returns up to limit messages, newest first.
type ChatStore interface {
	Append(ctx context.Context, msg domain.ChatMessage) error
	Recent(ctx context.Context, roomKey domain.RoomKey, limit int) ([]domain.ChatMessage, error)
}

// Chat validates and fans out chat messages to room members, and feeds
// the durable store off the hot path. The live broadcast never waits on
// the store: a message is at most as durable as the store, but always
// delivered live while the room is connected.
type Chat struct {
	registry     *Registry
	store        ChatStore
	limiter      *SlidingLimiter
	historyLimit int
	appendCh     chan domain.ChatMessage
}

func NewChat(registry *Registry, store ChatStore, limiter *SlidingLimiter, historyLimit int) *Chat {
	return &Chat{
		registry:     registry,
		store:        store,
		limiter:      limiter,
		historyLimit: historyLimit,
		appendCh:     make(chan domain.ChatMessage, appendQueueSize),
	}
}

// Run drains the append queue. One writer keeps store order equal to
// send order per room. Call from a goroutine at startup.
func (c *Chat) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.appendCh:
			appendCtx, cancel := context.WithTimeout(ctx, appendTimeout)
			err := c.store.Append(appendCtx, msg)
			cancel()
			if err != nil {
				metrics.ChatStoreFailures.Inc()
				log.Error().Err(err).Str("module", "app.chat").Str("room", string(msg.RoomKey)).Msg("store append failed")
			}
		}
	}
}

// Send constructs the message, queues it for persistence, and broadcasts
// it to all current room members regardless of the store's fate.
func (c *Chat) Send(roomKey domain.RoomKey, sender *domain.Session, text string) error {
	if c.limiter != nil && !c.limiter.Allow(sender.ID) {
		return ErrRateLimited
	}
	msg, err := domain.NewChatMessage(roomKey, sender.DisplayName, text)
	if err != nil {
		return err
	}

	select {
	case c.appendCh <- msg:
	default:
		metrics.ChatStoreFailures.Inc()
		log.Warn().Str("module", "app.chat").Str("room", string(roomKey)).Msg("append queue full, message not persisted")
	}

	frame, err := core.EncodeFrame(core.ChatMessageFrame{Type: core.TypeChatMessage, ChatMessage: msg})
	if err != nil {
		return err
	}
	for _, m := range c.registry.Members(roomKey) {
		if err := m.Conn.TrySend(frame); err != nil {
			log.Warn().Str("module", "app.chat").Str("sid", string(m.SID)).Err(err).Msg("drop chat frame")
		}
	}
	return nil
}

// Forget releases per-session limiter state on disconnect.
func (c *Chat) Forget(sid domain.SessionID) {
	if c.limiter != nil {
		c.limiter.Forget(sid)
	}
}

// Recent loads the newest messages for a room, reordered oldest first
// for the single requesting connection. A store outage yields an empty
// result, never a failed connection.
func (c *Chat) Recent(ctx context.Context, roomKey domain.RoomKey) []domain.ChatMessage {
	msgs, err := c.store.Recent(ctx, roomKey, c.historyLimit)
	if err != nil {
		metrics.ChatStoreFailures.Inc()
		log.Error().Err(err).Str("module", "app.chat").Str("room", string(roomKey)).Msg("store read failed")
		return []domain.ChatMessage{}
	}
	out := make([]domain.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = m
	}
	return out
}

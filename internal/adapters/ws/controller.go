// Package ws terminates gateway connections: upgrade, authenticate,
// dispatch frames, and guarantee cleanup on disconnect.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/adapters/identity"
	"github.com/dkeye/Plaza/internal/adapters/rooms"
	"github.com/dkeye/Plaza/internal/app"
	"github.com/dkeye/Plaza/internal/config"
	"github.com/dkeye/Plaza/internal/domain"
	"github.com/dkeye/Plaza/internal/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type frameHandler func(ctx context.Context, st *connState, c *wsConn, data []byte)

// connState is the per-connection lifecycle: nil session means
// unauthenticated. cleanup fires exactly once however the connection
// dies.
type connState struct {
	sess    *domain.Session
	cleanup sync.Once
}

type Controller struct {
	orch      *app.Orchestrator
	verifier  identity.TokenVerifier
	directory rooms.Directory
	cfg       *config.Config
	dispatch  map[string]frameHandler
}

func NewController(orch *app.Orchestrator, verifier identity.TokenVerifier, directory rooms.Directory, cfg *config.Config) *Controller {
	ctl := &Controller{
		orch:      orch,
		verifier:  verifier,
		directory: directory,
		cfg:       cfg,
	}
	ctl.dispatch = map[string]frameHandler{
		"join":           ctl.handleJoin,
		"move":           ctl.handleMove,
		"chat":           ctl.handleChat,
		"getChatHistory": ctl.handleChatHistory,
		"ping":           ctl.handlePing,
		"signal-offer":   ctl.signalHandler(domain.SignalOffer),
		"signal-answer":  ctl.signalHandler(domain.SignalAnswer),
		"signal-ice":     ctl.signalHandler(domain.SignalICECandidate),
	}
	return ctl
}

// HandleWS owns the connection from upgrade to teardown.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}
	log.Info().Str("module", "ws").Str("remote", conn.RemoteAddr().String()).Msg("new connection")
	metrics.Connections.Inc()

	wc := newWSConn(conn, ctl.cfg.SendBuffer)
	st := &connState{}
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, wc)
	go ctl.readPump(ctx, cancel, st, wc)
}

// teardown is the single exit path: idempotent under races between a
// transport error and an explicit close.
func (ctl *Controller) teardown(st *connState, c *wsConn) {
	st.cleanup.Do(func() {
		c.Close()
		metrics.Connections.Dec()
		if st.sess == nil {
			return
		}
		ctl.orch.Leave(st.sess.RoomKey, st.sess.ID)
		log.Info().Str("module", "ws").Str("sid", string(st.sess.ID)).Msg("session terminated")
	})
}

func (ctl *Controller) handleFrame(ctx context.Context, st *connState, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("malformed frame")
		return
	}
	h, ok := ctl.dispatch[env.Type]
	if !ok {
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown frame type")
		return
	}
	h(ctx, st, c, data)
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("sendJSON dropped")
	}
}

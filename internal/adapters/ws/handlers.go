package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
)

const (
	joinCheckTimeout = 10 * time.Second
	historyTimeout   = 5 * time.Second
)

// handleJoin runs the only transition out of Unauthenticated. Both
// external checks happen before any registry mutation; an auth or
// room failure closes the connection with nothing registered.
func (ctl *Controller) handleJoin(ctx context.Context, st *connState, c *wsConn, data []byte) {
	if st.sess != nil {
		log.Warn().Str("module", "ws").Str("sid", string(st.sess.ID)).Msg("join while active, rejected")
		return
	}

	var p struct {
		Type    string `json:"type"`
		RoomKey string `json:"roomKey"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad join payload")
		return
	}

	ident, err := ctl.verifier.Verify(p.Token)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("authentication failed, closing")
		c.Close()
		return
	}

	roomKey, err := domain.ParseRoomKey(p.RoomKey)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad room key, closing")
		c.Close()
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, joinCheckTimeout)
	exists, err := ctl.directory.Exists(checkCtx, roomKey)
	cancel()
	if err != nil || !exists {
		if err != nil {
			log.Error().Err(err).Str("module", "ws").Str("room", string(roomKey)).Msg("room lookup failed, closing")
		} else {
			log.Warn().Str("module", "ws").Str("room", string(roomKey)).Msg("unknown room, closing")
		}
		c.Close()
		return
	}

	sess := domain.NewSession(roomKey, ident.DisplayName, ctl.cfg.Spawn())
	ctl.orch.Join(sess, c, func(peers []core.PeerDTO) {
		ctl.sendJSON(c, core.JoinedFrame{
			Type:  core.TypeJoined,
			Spawn: sess.Position,
			Peers: peers,
		})
	})
	st.sess = sess
	log.Info().Str("module", "ws").Str("sid", string(sess.ID)).Str("room", string(roomKey)).Str("user", ident.UserID).Msg("session active")
}

func (ctl *Controller) handleMove(_ context.Context, st *connState, _ *wsConn, data []byte) {
	if st.sess == nil {
		return
	}
	var p struct {
		Type string `json:"type"`
		X    int    `json:"x"`
		Y    int    `json:"y"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad move payload")
		return
	}
	ctl.orch.Move(st.sess.ID, st.sess.RoomKey, domain.Position{X: p.X, Y: p.Y})
}

func (ctl *Controller) handleChat(_ context.Context, st *connState, _ *wsConn, data []byte) {
	if st.sess == nil {
		return
	}
	var p struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("bad chat payload")
		return
	}
	if err := ctl.orch.SendChat(st.sess.RoomKey, st.sess, p.Text); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("sid", string(st.sess.ID)).Msg("chat dropped")
	}
}

func (ctl *Controller) handleChatHistory(ctx context.Context, st *connState, c *wsConn, _ []byte) {
	if st.sess == nil {
		return
	}
	loadCtx, cancel := context.WithTimeout(ctx, historyTimeout)
	msgs := ctl.orch.ChatHistory(loadCtx, st.sess.RoomKey)
	cancel()
	ctl.sendJSON(c, core.ChatHistoryFrame{Type: core.TypeChatHistory, Messages: msgs})
}

func (ctl *Controller) handlePing(_ context.Context, _ *connState, c *wsConn, _ []byte) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{Type: core.TypePong})
}

// signalHandler builds one relay handler per envelope kind; the payload
// passes through untouched.
func (ctl *Controller) signalHandler(kind domain.SignalKind) frameHandler {
	return func(_ context.Context, st *connState, _ *wsConn, data []byte) {
		if st.sess == nil {
			return
		}
		var p struct {
			Type    string          `json:"type"`
			To      string          `json:"to"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn().Err(err).Str("module", "ws").Msg("bad signal payload")
			return
		}
		ctl.orch.RelaySignal(domain.SignalEnvelope{
			From:    st.sess.ID,
			To:      domain.SessionID(p.To),
			Kind:    kind,
			Payload: p.Payload,
		})
	}
}

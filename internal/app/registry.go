package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
)

type memberEntry struct {
	session *domain.Session
	conn    core.SignalConnection
}

// roomState is the live membership of one room. Its mutex serializes
// every mutation against every snapshot for that room; nothing holds it
// across network I/O.
type roomState struct {
	mu      sync.RWMutex
	members map[domain.SessionID]*memberEntry
}

func newRoomState() *roomState {
	return &roomState{members: make(map[domain.SessionID]*memberEntry)}
}

// MemberConn pairs a session id with its transport for fan-out.
type MemberConn struct {
	SID  domain.SessionID
	Conn core.SignalConnection
}

// Registry is the single authoritative table of which sessions belong
// to which room. One instance per process, injected everywhere that
// needs membership (no package-level singleton).
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]*roomState
	index map[domain.SessionID]domain.RoomKey
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.RoomKey]*roomState),
		index: make(map[domain.SessionID]domain.RoomKey),
	}
}

// Join inserts the session into its room, creating the room on first
// join. Idempotent per session id: a re-join replaces the prior entry.
func (r *Registry) Join(sess *domain.Session, conn core.SignalConnection) {
	r.mu.Lock()
	rs, ok := r.rooms[sess.RoomKey]
	if !ok {
		rs = newRoomState()
		r.rooms[sess.RoomKey] = rs
	}
	r.index[sess.ID] = sess.RoomKey
	r.mu.Unlock()

	rs.mu.Lock()
	rs.members[sess.ID] = &memberEntry{session: sess, conn: conn}
	rs.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("sid", string(sess.ID)).Str("room", string(sess.RoomKey)).Msg("member joined")
}

// Leave removes and returns the session if present. An empty room stays
// in the map: cheap to keep, cheap to recreate.
func (r *Registry) Leave(roomKey domain.RoomKey, sid domain.SessionID) (*domain.Session, bool) {
	r.mu.RLock()
	rs, ok := r.rooms[roomKey]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	rs.mu.Lock()
	e, ok := rs.members[sid]
	if ok {
		delete(rs.members, sid)
	}
	rs.mu.Unlock()
	if !ok {
		log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomKey)).Msg("leave: not found")
		return nil, false
	}

	r.mu.Lock()
	if r.index[sid] == roomKey {
		delete(r.index, sid)
	}
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomKey)).Msg("member left")
	return e.session, true
}

// Move updates the session's position in place, only if it is still a
// current member of the claimed room.
func (r *Registry) Move(sid domain.SessionID, roomKey domain.RoomKey, pos domain.Position) bool {
	r.mu.RLock()
	rs, ok := r.rooms[roomKey]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	e, ok := rs.members[sid]
	if !ok {
		return false
	}
	e.session.Position = pos
	return true
}

// Snapshot returns a copy of the room's current membership, safe to
// fan out without racing further mutation.
func (r *Registry) Snapshot(roomKey domain.RoomKey) []core.PeerDTO {
	r.mu.RLock()
	rs, ok := r.rooms[roomKey]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]core.PeerDTO, 0, len(rs.members))
	for _, e := range rs.members {
		out = append(out, core.PeerDTO{
			SessionID:   e.session.ID,
			DisplayName: e.session.DisplayName,
			Position:    e.session.Position,
		})
	}
	return out
}

// Members returns the room's transports for fan-out.
func (r *Registry) Members(roomKey domain.RoomKey) []MemberConn {
	r.mu.RLock()
	rs, ok := r.rooms[roomKey]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]MemberConn, 0, len(rs.members))
	for sid, e := range rs.members {
		out = append(out, MemberConn{SID: sid, Conn: e.conn})
	}
	return out
}

// Peer resolves one member's transport within a room.
func (r *Registry) Peer(roomKey domain.RoomKey, sid domain.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	rs, ok := r.rooms[roomKey]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()
	e, ok := rs.members[sid]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// RoomOf answers "is this id still live, and where" for anything that
// would otherwise keep a shadow map.
func (r *Registry) RoomOf(sid domain.SessionID) (domain.RoomKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.index[sid]
	return key, ok
}

// Rooms lists current rooms with their member counts.
func (r *Registry) Rooms() []core.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(r.rooms))
	for key, rs := range r.rooms {
		rs.mu.RLock()
		n := len(rs.members)
		rs.mu.RUnlock()
		out = append(out, core.RoomInfo{RoomKey: key, MemberCount: n})
	}
	return out
}

package app

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
)

// stubConn records every frame it is handed. fail flips it into a
// connection that rejects all sends.
type stubConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
}

func (s *stubConn) TrySend(f core.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("send failed")
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *stubConn) Close() {}

func (s *stubConn) taken() []core.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

func newTestSession(roomKey string, name string) *domain.Session {
	return domain.NewSession(domain.RoomKey(roomKey), name, domain.Position{X: 300, Y: 300})
}

func TestJoinCreatesRoomAndSnapshotSeesMember(t *testing.T) {
	r := NewRegistry()
	sess := newTestSession("r1", "alice")
	r.Join(sess, &stubConn{})

	snap := r.Snapshot("r1")
	if len(snap) != 1 {
		t.Fatalf("snapshot has %d members, want 1", len(snap))
	}
	if snap[0].SessionID != sess.ID || snap[0].DisplayName != "alice" {
		t.Errorf("snapshot entry = %+v", snap[0])
	}
}

func TestRejoinReplacesEntry(t *testing.T) {
	r := NewRegistry()
	sess := newTestSession("r1", "alice")
	first := &stubConn{}
	second := &stubConn{}
	r.Join(sess, first)
	r.Join(sess, second)

	if len(r.Snapshot("r1")) != 1 {
		t.Fatalf("rejoin duplicated the member")
	}
	conn, ok := r.Peer("r1", sess.ID)
	if !ok || conn != second {
		t.Errorf("rejoin did not replace the connection")
	}
}

func TestLeaveRemovesAndReports(t *testing.T) {
	r := NewRegistry()
	sess := newTestSession("r1", "alice")
	r.Join(sess, &stubConn{})

	removed, ok := r.Leave("r1", sess.ID)
	if !ok || removed.ID != sess.ID {
		t.Fatalf("leave = %v, %v", removed, ok)
	}
	if _, ok := r.Leave("r1", sess.ID); ok {
		t.Error("second leave reported found")
	}
	if _, ok := r.RoomOf(sess.ID); ok {
		t.Error("session still indexed after leave")
	}
	if len(r.Snapshot("r1")) != 0 {
		t.Error("session still in snapshot after leave")
	}
}

func TestLeaveUnknownRoom(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Leave("nope", "sid"); ok {
		t.Error("leave on unknown room reported found")
	}
}

func TestMoveUpdatesPosition(t *testing.T) {
	r := NewRegistry()
	sess := newTestSession("r1", "alice")
	r.Join(sess, &stubConn{})

	if !r.Move(sess.ID, "r1", domain.Position{X: 310, Y: 300}) {
		t.Fatal("move rejected for current member")
	}
	snap := r.Snapshot("r1")
	if snap[0].Position.X != 310 || snap[0].Position.Y != 300 {
		t.Errorf("position = %+v", snap[0].Position)
	}
}

func TestMoveRejectsRoomMismatch(t *testing.T) {
	r := NewRegistry()
	sess := newTestSession("r1", "alice")
	r.Join(sess, &stubConn{})

	if r.Move(sess.ID, "r2", domain.Position{X: 1, Y: 1}) {
		t.Error("move accepted for a room the session is not in")
	}
	if r.Move("ghost", "r1", domain.Position{X: 1, Y: 1}) {
		t.Error("move accepted for unknown session")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	sess := newTestSession("r1", "alice")
	r.Join(sess, &stubConn{})

	snap := r.Snapshot("r1")
	snap[0].Position = domain.Position{X: -1, Y: -1}

	if got := r.Snapshot("r1")[0].Position; got.X == -1 {
		t.Error("mutating a snapshot leaked into the registry")
	}
}

func TestConcurrentJoins(t *testing.T) {
	r := NewRegistry()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Join(newTestSession("r1", fmt.Sprintf("user-%d", i)), &stubConn{})
		}(i)
	}
	wg.Wait()

	snap := r.Snapshot("r1")
	if len(snap) != n {
		t.Fatalf("snapshot has %d members, want %d", len(snap), n)
	}
	seen := make(map[domain.SessionID]bool, n)
	for _, p := range snap {
		if seen[p.SessionID] {
			t.Fatalf("duplicate session id %s", p.SessionID)
		}
		seen[p.SessionID] = true
	}
}

func TestRoomsListing(t *testing.T) {
	r := NewRegistry()
	r.Join(newTestSession("r1", "a"), &stubConn{})
	r.Join(newTestSession("r1", "b"), &stubConn{})
	r.Join(newTestSession("r2", "c"), &stubConn{})

	counts := make(map[domain.RoomKey]int)
	for _, info := range r.Rooms() {
		counts[info.RoomKey] = info.MemberCount
	}
	if counts["r1"] != 2 || counts["r2"] != 1 {
		t.Errorf("room counts = %v", counts)
	}
}

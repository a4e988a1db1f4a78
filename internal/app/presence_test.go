package app

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Plaza/internal/core"
	"github.com/dkeye/Plaza/internal/domain"
)

func decodeFrames[T any](t *testing.T, conn *stubConn, wantType string) []T {
	t.Helper()
	var out []T
	for _, f := range conn.taken() {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(f, &env); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if env.Type != wantType {
			continue
		}
		var v T
		if err := json.Unmarshal(f, &v); err != nil {
			t.Fatalf("decode %s: %v", wantType, err)
		}
		out = append(out, v)
	}
	return out
}

func TestBroadcastSnapshotReachesAllMembers(t *testing.T) {
	reg := NewRegistry()
	b := NewBroadcaster(reg)

	connA, connB := &stubConn{}, &stubConn{}
	reg.Join(newTestSession("r1", "alice"), connA)
	reg.Join(newTestSession("r1", "bob"), connB)

	b.BroadcastSnapshot("r1")

	for name, conn := range map[string]*stubConn{"alice": connA, "bob": connB} {
		updates := decodeFrames[core.PresenceUpdateFrame](t, conn, core.TypePresenceUpdate)
		if len(updates) != 1 {
			t.Fatalf("%s got %d presence updates, want 1", name, len(updates))
		}
		if len(updates[0].Members) != 2 {
			t.Errorf("%s sees %d members, want 2", name, len(updates[0].Members))
		}
	}
}

func TestBroadcastSurvivesFailingRecipient(t *testing.T) {
	reg := NewRegistry()
	b := NewBroadcaster(reg)

	dead := &stubConn{fail: true}
	alive := &stubConn{}
	reg.Join(newTestSession("r1", "dead"), dead)
	reg.Join(newTestSession("r1", "alive"), alive)

	b.BroadcastSnapshot("r1")

	if got := decodeFrames[core.PresenceUpdateFrame](t, alive, core.TypePresenceUpdate); len(got) != 1 {
		t.Errorf("healthy member got %d updates, want 1", len(got))
	}
}

func TestBroadcastStaysInRoom(t *testing.T) {
	reg := NewRegistry()
	b := NewBroadcaster(reg)

	inRoom := &stubConn{}
	outside := &stubConn{}
	reg.Join(newTestSession("r1", "alice"), inRoom)
	reg.Join(newTestSession("r2", "eve"), outside)

	b.BroadcastSnapshot("r1")

	if frames := outside.taken(); len(frames) != 0 {
		t.Errorf("member of another room received %d frames", len(frames))
	}
}

func TestNotifyLeft(t *testing.T) {
	reg := NewRegistry()
	b := NewBroadcaster(reg)

	leaver := newTestSession("r1", "bob")
	stayer := &stubConn{}
	reg.Join(newTestSession("r1", "alice"), stayer)
	reg.Join(leaver, &stubConn{})

	reg.Leave("r1", leaver.ID)
	b.NotifyLeft("r1", leaver.ID)

	notices := decodeFrames[core.MemberLeftFrame](t, stayer, core.TypeMemberLeft)
	if len(notices) != 1 {
		t.Fatalf("got %d memberLeft notices, want 1", len(notices))
	}
	if notices[0].SessionID != leaver.ID {
		t.Errorf("notice names %s, want %s", notices[0].SessionID, leaver.ID)
	}
}

func TestBroadcastEmptyRoomIsNoop(t *testing.T) {
	reg := NewRegistry()
	b := NewBroadcaster(reg)
	b.BroadcastSnapshot("empty")
	b.NotifyLeft("empty", domain.SessionID("ghost"))
}

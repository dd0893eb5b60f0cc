package game

import (
	"errors"
	"testing"
	"time"
)

func newTestManager() *Manager {
	return NewManager(&fakeScheduler{}, func(token string) Emitter {
		return &recordingEmitter{}
	}, nil)
}

func TestGetOrCreateIsIdempotentPerToken(t *testing.T) {
	m := newTestManager()

	s1 := m.GetOrCreate("tok_a", ModeCasual)
	s2 := m.GetOrCreate("tok_a", ModeRanked)
	if s1 != s2 {
		t.Error("same token produced different sessions")
	}
	if s1.Mode != ModeCasual {
		t.Errorf("mode = %q, want the creator's casual", s1.Mode)
	}

	s3 := m.GetOrCreate("tok_b", ModeRanked)
	if s3 == s1 {
		t.Error("different tokens share a session")
	}
	if m.ActiveCount() != 2 {
		t.Errorf("active count = %d, want 2", m.ActiveCount())
	}
}

func TestGetUnknownToken(t *testing.T) {
	m := newTestManager()
	if _, err := m.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestEndRemovesSession(t *testing.T) {
	m := newTestManager()
	m.GetOrCreate("tok_a", ModeCasual)

	m.End("tok_a")
	if _, err := m.Get("tok_a"); err == nil {
		t.Error("session still registered after End")
	}
	if m.ActiveCount() != 0 {
		t.Errorf("active count = %d, want 0", m.ActiveCount())
	}
}

func TestListSummarizesSessions(t *testing.T) {
	m := newTestManager()
	s := m.GetOrCreate("tok_a", ModeRanked)
	s.Join(JoinRequest{ConnID: "c1", AccountRef: "a1", DisplayName: "Alice"})

	infos := m.List()
	if len(infos) != 1 {
		t.Fatalf("list length = %d, want 1", len(infos))
	}
	info := infos[0]
	if info.Token != "tok_a" || info.Mode != ModeRanked || info.Status != StatusWaiting {
		t.Errorf("info = %+v", info)
	}
	if len(info.Players) != 1 || info.Players[0] != "Alice" {
		t.Errorf("players = %v", info.Players)
	}
}

func TestReapExpiredFinishedSession(t *testing.T) {
	m := newTestManager()
	m.GetOrCreate("tok_a", ModeCasual)

	m.mu.Lock()
	m.sessions["tok_a"].finishedAt = time.Now().Add(-2 * finishedSessionTTL)
	m.mu.Unlock()

	m.reapExpired()
	if m.ActiveCount() != 0 {
		t.Error("finished session not reaped")
	}
}

func TestReapSparesRecentAndActiveSessions(t *testing.T) {
	m := newTestManager()
	m.GetOrCreate("tok_new", ModeCasual)

	stale := m.GetOrCreate("tok_stale", ModeCasual)
	stale.Join(JoinRequest{ConnID: "c1", AccountRef: "a1"})
	stale.Join(JoinRequest{ConnID: "c2", AccountRef: "a2"})
	stale.Ready("c1")
	stale.Ready("c2")

	m.mu.Lock()
	m.sessions["tok_stale"].createdAt = time.Now().Add(-2 * waitingSessionTTL)
	m.mu.Unlock()

	m.reapExpired()

	// Recent waiting session survives; an old one does too once it left
	// the lobby.
	if _, err := m.Get("tok_new"); err != nil {
		t.Error("recent session reaped")
	}
	if _, err := m.Get("tok_stale"); err != nil {
		t.Error("active session reaped by lobby TTL")
	}
}

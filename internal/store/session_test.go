package store

import (
	"testing"

	"go.uber.org/zap"
)

func TestSessionStoreUpsertEvictsPriorSessionForSamePlayer(t *testing.T) {
	s := NewSessionStore(0, 60_000, zap.NewNop().Sugar())
	s.Upsert("sess-1", &SessionPayload{SessionID: "sess-1", PlayerID: "player-1"}, 1000)
	s.Upsert("sess-2", &SessionPayload{SessionID: "sess-2", PlayerID: "player-1"}, 1001)

	if _, ok := s.Get("sess-1"); ok {
		t.Fatalf("Get(sess-1) ok = true, the older session for the same player should be evicted")
	}
	rec, ok := s.FindByPlayer("player-1")
	if !ok || rec.Payload.SessionID != "sess-2" {
		t.Fatalf("FindByPlayer(player-1) = %+v, %v, want sess-2, true", rec, ok)
	}
}

func TestSessionStoreFindByToken(t *testing.T) {
	s := NewSessionStore(0, 60_000, zap.NewNop().Sugar())
	s.Upsert("sess-1", &SessionPayload{SessionID: "sess-1", PlayerID: "player-1", ReconnectToken: "tok-1"}, 1000)

	rec, ok := s.FindByToken("tok-1")
	if !ok || rec.Payload.SessionID != "sess-1" {
		t.Fatalf("FindByToken(tok-1) = %+v, %v, want sess-1, true", rec, ok)
	}
	if _, ok := s.FindByToken("missing"); ok {
		t.Fatalf("FindByToken(missing) ok = true")
	}
}

func TestSessionStoreDeleteRemovesAllIndices(t *testing.T) {
	s := NewSessionStore(0, 60_000, zap.NewNop().Sugar())
	s.Upsert("sess-1", &SessionPayload{SessionID: "sess-1", PlayerID: "player-1", ReconnectToken: "tok-1"}, 1000)
	s.Delete("sess-1")

	if _, ok := s.Get("sess-1"); ok {
		t.Fatalf("Get(sess-1) ok = true after Delete")
	}
	if _, ok := s.FindByPlayer("player-1"); ok {
		t.Fatalf("FindByPlayer(player-1) ok = true after Delete")
	}
	if _, ok := s.FindByToken("tok-1"); ok {
		t.Fatalf("FindByToken(tok-1) ok = true after Delete")
	}
}

func TestSessionStoreDisconnectStampsReconnectDeadline(t *testing.T) {
	s := NewSessionStore(0, 60_000, zap.NewNop().Sugar())
	s.Upsert("sess-1", &SessionPayload{SessionID: "sess-1", PlayerID: "player-1", Connected: true}, 1000)

	rec, ok := s.Disconnect("sess-1", 1_000_000)
	if !ok {
		t.Fatalf("Disconnect() ok = false")
	}
	if rec.Payload.Connected {
		t.Fatalf("Connected = true after Disconnect")
	}
	if rec.Payload.ReconnectByMs == nil || *rec.Payload.ReconnectByMs != 1_060_000 {
		t.Fatalf("ReconnectByMs = %v, want 1060000", rec.Payload.ReconnectByMs)
	}
}

func TestSessionStoreReconnectClearsDeadline(t *testing.T) {
	s := NewSessionStore(0, 60_000, zap.NewNop().Sugar())
	s.Upsert("sess-1", &SessionPayload{SessionID: "sess-1", PlayerID: "player-1", Connected: true}, 1000)
	s.Disconnect("sess-1", 1_000_000)

	rec, ok := s.Reconnect("sess-1", 1_050_000)
	if !ok {
		t.Fatalf("Reconnect() ok = false")
	}
	if !rec.Payload.Connected {
		t.Fatalf("Connected = false after Reconnect")
	}
	if rec.Payload.ReconnectByMs != nil {
		t.Fatalf("ReconnectByMs = %v, want nil after Reconnect", rec.Payload.ReconnectByMs)
	}
}

func TestSessionPayloadCloneIsIndependent(t *testing.T) {
	deadline := int64(5000)
	p := &SessionPayload{SessionID: "sess-1", ReconnectByMs: &deadline}
	clone := p.Clone()
	*clone.ReconnectByMs = 9999

	if *p.ReconnectByMs != 5000 {
		t.Fatalf("mutating a clone's ReconnectByMs mutated the original")
	}
}

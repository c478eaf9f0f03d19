package store

import (
	"sync"

	"go.uber.org/zap"
)

// SessionPayload is spec §3 "SessionRecord".
type SessionPayload struct {
	SessionID      string `json:"sessionId"`
	PlayerID       string `json:"playerId"`
	LobbyID        string `json:"lobbyId"`
	GameID         string `json:"gameId,omitempty"`
	ReconnectToken string `json:"reconnectToken"`
	Connected      bool   `json:"connected"`
	ReconnectByMs  *int64 `json:"reconnectByMs,omitempty"`
}

// Clone returns a deep copy of the session payload.
func (p *SessionPayload) Clone() *SessionPayload {
	out := *p
	if p.ReconnectByMs != nil {
		v := *p.ReconnectByMs
		out.ReconnectByMs = &v
	}
	return &out
}

// SessionStore indexes sessions by SessionId, with derived indices by
// PlayerId (exactly one live session per player — an upsert for an
// existing player evicts the older session) and by ReconnectToken.
type SessionStore struct {
	*Indexed[*SessionPayload]
	mu             sync.RWMutex
	byPlayer       map[string]string // playerId -> sessionId
	byToken        map[string]string // reconnectToken -> sessionId
	reconnectGrace int64
	log            *zap.SugaredLogger
}

// NewSessionStore constructs an empty SessionStore. ttlMs <= 0 disables
// retention TTL; reconnectGraceMs configures the window computed into
// ReconnectByMs on disconnect.
func NewSessionStore(ttlMs, reconnectGraceMs int64, log *zap.SugaredLogger) *SessionStore {
	return &SessionStore{
		Indexed:        NewIndexed[*SessionPayload](ttlMs),
		byPlayer:       make(map[string]string),
		byToken:        make(map[string]string),
		reconnectGrace: reconnectGraceMs,
		log:            log,
	}
}

// Upsert stores the session, evicting any prior session for the same
// player (spec §3: "exactly one session per player at any time").
func (s *SessionStore) Upsert(sessionID string, payload *SessionPayload, nowMs int64) Record[*SessionPayload] {
	s.mu.Lock()
	if prior, ok := s.byPlayer[payload.PlayerID]; ok && prior != sessionID {
		s.mu.Unlock()
		s.Indexed.Delete(prior)
		s.removeFromIndices(prior)
		s.mu.Lock()
	}
	s.byPlayer[payload.PlayerID] = sessionID
	if payload.ReconnectToken != "" {
		s.byToken[payload.ReconnectToken] = sessionID
	}
	s.mu.Unlock()
	return s.Indexed.Upsert(sessionID, payload, nowMs)
}

func (s *SessionStore) removeFromIndices(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for p, sid := range s.byPlayer {
		if sid == sessionID {
			delete(s.byPlayer, p)
		}
	}
	for t, sid := range s.byToken {
		if sid == sessionID {
			delete(s.byToken, t)
		}
	}
}

// FindByPlayer returns the live session for playerID, if any.
func (s *SessionStore) FindByPlayer(playerID string) (Record[*SessionPayload], bool) {
	s.mu.RLock()
	sessionID, ok := s.byPlayer[playerID]
	s.mu.RUnlock()
	if !ok {
		return Record[*SessionPayload]{}, false
	}
	return s.Get(sessionID)
}

// FindByToken returns the session bound to a reconnect token, if any.
func (s *SessionStore) FindByToken(token string) (Record[*SessionPayload], bool) {
	s.mu.RLock()
	sessionID, ok := s.byToken[token]
	s.mu.RUnlock()
	if !ok {
		return Record[*SessionPayload]{}, false
	}
	return s.Get(sessionID)
}

// Delete removes the session and its derived indices.
func (s *SessionStore) Delete(sessionID string) {
	s.Indexed.Delete(sessionID)
	s.removeFromIndices(sessionID)
}

// Disconnect marks a session disconnected and computes ReconnectByMs from
// the store's configured grace window, logging a structured event.
func (s *SessionStore) Disconnect(sessionID string, nowMs int64) (Record[*SessionPayload], bool) {
	rec, ok := s.Get(sessionID)
	if !ok {
		return Record[*SessionPayload]{}, false
	}
	rec.Payload.Connected = false
	deadline := nowMs + s.reconnectGrace
	rec.Payload.ReconnectByMs = &deadline
	updated := s.Indexed.Upsert(sessionID, rec.Payload, nowMs)
	if s.log != nil {
		s.log.Infow("session disconnected", "sessionId", sessionID, "playerId", rec.Payload.PlayerID, "reconnectByMs", deadline)
	}
	return updated, true
}

// Reconnect marks a session connected again and clears ReconnectByMs,
// logging a structured event.
func (s *SessionStore) Reconnect(sessionID string, nowMs int64) (Record[*SessionPayload], bool) {
	rec, ok := s.Get(sessionID)
	if !ok {
		return Record[*SessionPayload]{}, false
	}
	rec.Payload.Connected = true
	rec.Payload.ReconnectByMs = nil
	updated := s.Indexed.Upsert(sessionID, rec.Payload, nowMs)
	if s.log != nil {
		s.log.Infow("session reconnected", "sessionId", sessionID, "playerId", rec.Payload.PlayerID)
	}
	return updated, true
}

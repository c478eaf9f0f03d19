package store

import (
	"sync"

	"github.com/seanwolter/fun-euchre/internal/lobbystate"
)

// LobbyStore indexes lobby records by LobbyId.
type LobbyStore struct {
	*Indexed[*lobbystate.State]
	mu          sync.RWMutex
	byPlayer    map[string]string // playerId -> lobbyId, derived index
}

// NewLobbyStore constructs an empty LobbyStore. ttlMs <= 0 disables TTL.
func NewLobbyStore(ttlMs int64) *LobbyStore {
	return &LobbyStore{Indexed: NewIndexed[*lobbystate.State](ttlMs), byPlayer: make(map[string]string)}
}

// Upsert stores the lobby and refreshes the derived player->lobby index.
func (s *LobbyStore) Upsert(lobbyID string, state *lobbystate.State, nowMs int64) Record[*lobbystate.State] {
	rec := s.Indexed.Upsert(lobbyID, state, nowMs)
	s.mu.Lock()
	for _, seat := range state.Seats {
		if seat.PlayerID != "" {
			s.byPlayer[seat.PlayerID] = lobbyID
		}
	}
	s.mu.Unlock()
	return rec
}

// FindByPlayer returns the lobby a player is currently seated in, if any.
func (s *LobbyStore) FindByPlayer(playerID string) (Record[*lobbystate.State], bool) {
	s.mu.RLock()
	lobbyID, ok := s.byPlayer[playerID]
	s.mu.RUnlock()
	if !ok {
		return Record[*lobbystate.State]{}, false
	}
	return s.Get(lobbyID)
}

// Delete removes the lobby record and prunes it from the derived index.
func (s *LobbyStore) Delete(lobbyID string) {
	rec, ok := s.Get(lobbyID)
	s.Indexed.Delete(lobbyID)
	if !ok {
		return
	}
	s.mu.Lock()
	for _, seat := range rec.Payload.Seats {
		if seat.PlayerID != "" && s.byPlayer[seat.PlayerID] == lobbyID {
			delete(s.byPlayer, seat.PlayerID)
		}
	}
	s.mu.Unlock()
}

package store

import (
	"sync"

	"github.com/seanwolter/fun-euchre/internal/cards"
)

// GameStore indexes game records by GameId, with a derived lobbyId ->
// gameId index.
type GameStore struct {
	*Indexed[*cards.GameState]
	mu        sync.RWMutex
	byLobby   map[string]string // lobbyId -> gameId
	lobbyOf   map[string]string // gameId -> lobbyId (reverse, for delete)
}

// NewGameStore constructs an empty GameStore. ttlMs <= 0 disables TTL.
func NewGameStore(ttlMs int64) *GameStore {
	return &GameStore{
		Indexed: NewIndexed[*cards.GameState](ttlMs),
		byLobby: make(map[string]string),
		lobbyOf: make(map[string]string),
	}
}

// UpsertForLobby stores the game and links it to lobbyID in the derived
// index.
func (s *GameStore) UpsertForLobby(gameID, lobbyID string, state *cards.GameState, nowMs int64) Record[*cards.GameState] {
	rec := s.Indexed.Upsert(gameID, state, nowMs)
	s.mu.Lock()
	s.byLobby[lobbyID] = gameID
	s.lobbyOf[gameID] = lobbyID
	s.mu.Unlock()
	return rec
}

// FindByLobby returns the game currently associated with lobbyID, if any.
func (s *GameStore) FindByLobby(lobbyID string) (gameID string, rec Record[*cards.GameState], ok bool) {
	s.mu.RLock()
	gameID, ok = s.byLobby[lobbyID]
	s.mu.RUnlock()
	if !ok {
		return "", Record[*cards.GameState]{}, false
	}
	rec, found := s.Get(gameID)
	return gameID, rec, found
}

// LobbyIDFor returns the lobbyId a game was created under, if any.
func (s *GameStore) LobbyIDFor(gameID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lobbyOf[gameID]
}

// Delete removes the game record and its derived index entries.
func (s *GameStore) Delete(gameID string) {
	s.Indexed.Delete(gameID)
	s.mu.Lock()
	if lobbyID, ok := s.lobbyOf[gameID]; ok {
		delete(s.byLobby, lobbyID)
		delete(s.lobbyOf, gameID)
	}
	s.mu.Unlock()
}

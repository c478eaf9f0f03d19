// Package snapshot implements spec §4.10 "Snapshot Engine &
// Checkpointer": versioned serialization of every store, atomic file
// write, and a debounced scheduler that drives persistence from
// dispatcher activity.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seanwolter/fun-euchre/internal/cards"
	"github.com/seanwolter/fun-euchre/internal/lobbystate"
	"github.com/seanwolter/fun-euchre/internal/store"
)

const (
	Schema  = "fun-euchre.runtime.snapshot"
	Version = 1
)

// Document is the persisted shape described by spec §4.10.
type Document struct {
	Schema         string          `json:"schema"`
	Version        int             `json:"version"`
	GeneratedAtMs  int64           `json:"generatedAtMs"`
	LobbyRecords   []LobbyRecord   `json:"lobbyRecords"`
	GameRecords    []GameRecord    `json:"gameRecords"`
	SessionRecords []SessionRecord `json:"sessionRecords"`
}

type LobbyRecord struct {
	LobbyID     string            `json:"lobbyId"`
	Payload     *lobbystate.State `json:"payload"`
	CreatedAtMs int64             `json:"createdAtMs"`
	UpdatedAtMs int64             `json:"updatedAtMs"`
}

type GameRecord struct {
	GameID      string            `json:"gameId"`
	LobbyID     string            `json:"lobbyId"`
	Payload     *cards.GameState  `json:"payload"`
	CreatedAtMs int64             `json:"createdAtMs"`
	UpdatedAtMs int64             `json:"updatedAtMs"`
}

type SessionRecord struct {
	SessionID   string                 `json:"sessionId"`
	Payload     *store.SessionPayload  `json:"payload"`
	CreatedAtMs int64                  `json:"createdAtMs"`
	UpdatedAtMs int64                  `json:"updatedAtMs"`
}

// Stores is the minimal interface the engine needs from the runtime's
// store layer; the orchestrator supplies the concrete *store.*Store
// values which already satisfy it.
type Stores struct {
	Lobbies  *store.LobbyStore
	Games    *store.GameStore
	Sessions *store.SessionStore
	// GameLobbyID resolves a gameId to its owning lobbyId for the export;
	// the orchestrator passes GameStore.LobbyIDFor.
	GameLobbyID func(gameID string) string
}

// Create builds a Document from the current contents of every store.
func Create(s Stores, nowMs int64) Document {
	doc := Document{Schema: Schema, Version: Version, GeneratedAtMs: nowMs}
	for id, rec := range s.Lobbies.List() {
		doc.LobbyRecords = append(doc.LobbyRecords, LobbyRecord{
			LobbyID: id, Payload: rec.Payload, CreatedAtMs: rec.CreatedAtMs, UpdatedAtMs: rec.UpdatedAtMs,
		})
	}
	for id, rec := range s.Games.List() {
		doc.GameRecords = append(doc.GameRecords, GameRecord{
			GameID: id, LobbyID: s.GameLobbyID(id), Payload: rec.Payload,
			CreatedAtMs: rec.CreatedAtMs, UpdatedAtMs: rec.UpdatedAtMs,
		})
	}
	for id, rec := range s.Sessions.List() {
		doc.SessionRecords = append(doc.SessionRecords, SessionRecord{
			SessionID: id, Payload: rec.Payload, CreatedAtMs: rec.CreatedAtMs, UpdatedAtMs: rec.UpdatedAtMs,
		})
	}
	return doc
}

// Parse strictly validates the document's schema and version before
// accepting it.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("snapshot: malformed document: %w", err)
	}
	if doc.Schema != Schema {
		return Document{}, fmt.Errorf("snapshot: unsupported schema %q", doc.Schema)
	}
	if doc.Version != Version {
		return Document{}, fmt.Errorf("snapshot: unsupported version %d", doc.Version)
	}
	return doc, nil
}

// Apply replaces the contents of every store with doc's records,
// atomically per store.
func Apply(s Stores, doc Document) {
	lobbies := make(map[string]store.Record[*lobbystate.State], len(doc.LobbyRecords))
	for _, r := range doc.LobbyRecords {
		lobbies[r.LobbyID] = store.Record[*lobbystate.State]{Payload: r.Payload, CreatedAtMs: r.CreatedAtMs, UpdatedAtMs: r.UpdatedAtMs}
	}
	s.Lobbies.ReplaceAll(lobbies)

	games := make(map[string]store.Record[*cards.GameState], len(doc.GameRecords))
	for _, r := range doc.GameRecords {
		games[r.GameID] = store.Record[*cards.GameState]{Payload: r.Payload, CreatedAtMs: r.CreatedAtMs, UpdatedAtMs: r.UpdatedAtMs}
		if r.LobbyID != "" {
			s.Games.UpsertForLobby(r.GameID, r.LobbyID, r.Payload, r.UpdatedAtMs)
		}
	}
	s.Games.ReplaceAll(games)

	sessions := make(map[string]store.Record[*store.SessionPayload], len(doc.SessionRecords))
	for _, r := range doc.SessionRecords {
		sessions[r.SessionID] = store.Record[*store.SessionPayload]{Payload: r.Payload, CreatedAtMs: r.CreatedAtMs, UpdatedAtMs: r.UpdatedAtMs}
	}
	s.Sessions.ReplaceAll(sessions)
}

// WriteAtomic serializes doc and writes it to path via a temp file plus
// rename, per spec §4.10. The temp file is unlinked best-effort on any
// failure.
func WriteAtomic(path string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("snapshot: marshal failed: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: create directory: %w", err)
	}
	tmpPath := fmt.Sprintf("%s.tmp-%d-%s", path, os.Getpid(), uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("snapshot: write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("snapshot: rename temp file: %w", err)
	}
	return nil
}

// LoadAtBoot implements spec §4.10's boot policy: missing file starts
// clean; unparsable or unsupported schema/version starts clean with a
// structured warning; startup never fails because of snapshot state.
func LoadAtBoot(path string, log *zap.SugaredLogger) (Document, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && log != nil {
			log.Warnw("snapshot read failed, starting clean", "path", path, "error", err)
		}
		return Document{}, false
	}
	doc, err := Parse(data)
	if err != nil {
		if log != nil {
			log.Warnw("snapshot unparsable, starting clean", "path", path, "error", err)
		}
		return Document{}, false
	}
	return doc, true
}

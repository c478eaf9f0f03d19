// Package sweeper implements spec §4.9 "Lifecycle Sweeper": a timer-
// driven evaluator of every session record that drives forfeits,
// evictions, and retention pruning.
package sweeper

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seanwolter/fun-euchre/internal/broker"
	"github.com/seanwolter/fun-euchre/internal/cards"
	"github.com/seanwolter/fun-euchre/internal/clock"
	"github.com/seanwolter/fun-euchre/internal/lobbystate"
	"github.com/seanwolter/fun-euchre/internal/protocol"
	"github.com/seanwolter/fun-euchre/internal/reconnect"
	"github.com/seanwolter/fun-euchre/internal/snapshot"
	"github.com/seanwolter/fun-euchre/internal/store"
)

// Metrics is the minimal counter surface the sweeper touches.
type Metrics interface {
	ForfeitOccurred()
}

// Sweeper owns the periodic tick that evaluates every session against
// the reconnect policy.
type Sweeper struct {
	Clock           clock.Clock
	IntervalMs      int64
	GameRetentionMs int64
	Lobbies         *store.LobbyStore
	Games           *store.GameStore
	Sessions        *store.SessionStore
	Broker          *broker.Broker
	Checkpoint      *snapshot.Checkpointer
	Metrics         Metrics
	Log             *zap.SugaredLogger

	mu      sync.Mutex
	running bool
	queued  bool
	stopCh  chan struct{}
}

type lobbyAdapter struct{ state *lobbystate.State }

func (a lobbyAdapter) SeatOf(playerID string) (cards.Seat, bool) {
	for _, seat := range a.state.Seats {
		if seat.PlayerID == playerID {
			return seat.Seat, true
		}
	}
	return "", false
}

// Start arms the sweep timer. It returns immediately; the timer loop
// runs in its own goroutine until Stop is called.
func (s *Sweeper) Start() {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})
	stop := s.stopCh
	s.mu.Unlock()

	interval := time.Duration(s.IntervalMs) * time.Millisecond
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-s.Clock.After(interval):
				s.tick()
			}
		}
	}()
}

// Stop halts the sweep timer. A sweep already in progress completes.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
}

// tick coalesces reentrant firings: if a sweep is already running when
// the timer fires again, at most one "queued" flag is remembered and the
// running sweep re-runs once before quiescing.
func (s *Sweeper) tick() {
	s.mu.Lock()
	if s.running {
		s.queued = true
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	for {
		s.runOnce()
		s.mu.Lock()
		if !s.queued {
			s.running = false
			s.mu.Unlock()
			return
		}
		s.queued = false
		s.mu.Unlock()
	}
}

func (s *Sweeper) runOnce() {
	nowMs := s.Clock.NowMs()
	for sessionID, rec := range s.Sessions.List() {
		snap := reconnect.Snapshot{
			Connected:     rec.Payload.Connected,
			ReconnectByMs: rec.Payload.ReconnectByMs,
			UpdatedAtMs:   rec.UpdatedAtMs,
		}
		switch reconnect.Classify(snap, nowMs, s.GameRetentionMs) {
		case reconnect.Active, reconnect.GracePeriod:
			// no action
		case reconnect.ForfeitDue:
			s.handleForfeit(sessionID, rec)
		case reconnect.RetentionExpired:
			s.handleRetentionExpired(sessionID, rec)
		}
	}
}

func (s *Sweeper) handleForfeit(sessionID string, rec store.Record[*store.SessionPayload]) {
	lobbyID := rec.Payload.LobbyID
	lobbyRec, ok := s.Lobbies.Get(lobbyID)
	if !ok {
		return
	}
	gameID, gameRec, ok := s.Games.FindByLobby(lobbyID)
	if !ok || gameRec.Payload.Phase == cards.PhaseCompleted {
		return
	}
	result := reconnect.ResolveReconnectForfeit(gameRec.Payload, lobbyAdapter{lobbyRec.Payload}, rec.Payload.PlayerID)
	if !result.OK {
		if s.Log != nil {
			s.Log.Warnw("forfeit resolution rejected", "sessionId", sessionID, "lobbyId", lobbyID, "code", result.Code, "message", result.Message)
		}
		return
	}

	nowMs := s.Clock.NowMs()
	s.Games.UpsertForLobby(gameID, lobbyID, result.State, nowMs)

	loserTeam := cards.OpposingTeam(*result.State.Winner)
	message := forfeitMessage(rec.Payload.PlayerID, *result.State.Winner, loserTeam)
	noticeEvt := protocol.Outbound{
		Version: protocol.EnvelopeVersion, Type: protocol.TypeSystemNotice,
		Payload: protocol.SystemNoticePayload{Severity: protocol.SeverityWarning, Message: message},
	}
	s.Broker.Broadcast(broker.GameRoom(gameID), noticeEvt, true)
	s.Broker.Broadcast(broker.GameRoom(gameID), gameStateEvent(gameID, result.State), true)

	if s.Metrics != nil {
		s.Metrics.ForfeitOccurred()
	}
	if s.Checkpoint != nil {
		s.Checkpoint.Schedule()
	}
}

func forfeitMessage(playerID string, winner, loser cards.Team) string {
	return "Player \"" + playerID + "\" failed to reconnect before timeout. " + string(winner) + " wins by forfeit."
}

func gameStateEvent(gameID string, g *cards.GameState) protocol.Outbound {
	return protocol.Outbound{
		Version: protocol.EnvelopeVersion, Type: protocol.TypeGameState,
		Payload: protocol.GameStatePayload{
			GameID: gameID, HandNumber: g.HandNumber, Dealer: g.Dealer, Turn: g.CurrentTurn,
			Trump: g.Trump, Phase: g.Phase, Maker: g.Maker, Alone: g.Alone,
			PartnerSitsOut: g.PartnerSitsOut, Bidding: g.Bidding, Trick: g.Trick,
			Scores: g.Scores, Winner: g.Winner,
		},
	}
}

func (s *Sweeper) handleRetentionExpired(sessionID string, rec store.Record[*store.SessionPayload]) {
	s.Sessions.Delete(sessionID)
	s.Broker.DisconnectSession(sessionID)

	lobbyID := rec.Payload.LobbyID
	if gameID, gameRec, ok := s.Games.FindByLobby(lobbyID); ok && isTerminal(gameRec.Payload.Phase) {
		s.Games.Delete(gameID)
	}
	if !s.lobbyHasLiveSessions(lobbyID) {
		s.Lobbies.Delete(lobbyID)
	}
	if s.Checkpoint != nil {
		s.Checkpoint.Schedule()
	}
}

func isTerminal(p cards.Phase) bool { return p == cards.PhaseCompleted }

func (s *Sweeper) lobbyHasLiveSessions(lobbyID string) bool {
	for _, rec := range s.Sessions.List() {
		if rec.Payload.LobbyID == lobbyID {
			return true
		}
	}
	return false
}

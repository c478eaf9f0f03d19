// Package reconnect implements spec §4.6 "Reconnect Policy": a pure
// lifecycle classifier over session snapshots plus the forfeit resolver
// the sweeper and dispatchers invoke when a disconnected player's grace
// window lapses.
package reconnect

import (
	"github.com/seanwolter/fun-euchre/internal/cards"
)

// MinReconnectGraceMs and MinGameRetentionMs are the spec §4.6 enforced
// minimums; config loading rejects values below these floors.
const (
	MinReconnectGraceMs int64 = 60_000
	MinGameRetentionMs  int64 = 15 * 60 * 1000
)

// Lifecycle is the classification of a session's reconnect state.
type Lifecycle string

const (
	Active            Lifecycle = "active"
	RetentionExpired  Lifecycle = "retention_expired"
	GracePeriod       Lifecycle = "grace_period"
	ForfeitDue        Lifecycle = "forfeit_due"
)

// Snapshot is the minimal session projection the policy classifies.
type Snapshot struct {
	Connected     bool
	ReconnectByMs *int64
	UpdatedAtMs   int64
}

// Classify returns the session's current lifecycle stage.
func Classify(s Snapshot, nowMs, gameRetentionMs int64) Lifecycle {
	if s.Connected {
		return Active
	}
	if nowMs > s.UpdatedAtMs+gameRetentionMs {
		return RetentionExpired
	}
	if s.ReconnectByMs != nil && nowMs <= *s.ReconnectByMs {
		return GracePeriod
	}
	return ForfeitDue
}

// ForfeitCode enumerates the rejection codes ResolveReconnectForfeit can
// return instead of a completed game.
type ForfeitCode string

const (
	ForfeitInvalidState  ForfeitCode = "INVALID_STATE"
	ForfeitInvalidAction ForfeitCode = "INVALID_ACTION"
)

// ForfeitResult is the outcome of resolving a forfeit.
type ForfeitResult struct {
	OK      bool
	State   *cards.GameState
	Code    ForfeitCode
	Message string
}

func forfeitOK(g *cards.GameState) ForfeitResult { return ForfeitResult{OK: true, State: g} }
func forfeitFail(code ForfeitCode, msg string) ForfeitResult {
	return ForfeitResult{OK: false, Code: code, Message: msg}
}

// LobbySeats is the minimal lobby projection ResolveReconnectForfeit needs
// to validate that the forfeiting player is seated.
type LobbySeats interface {
	SeatOf(playerID string) (cards.Seat, bool)
}

// ResolveReconnectForfeit builds the completed-game projection produced
// when a disconnected player's grace window lapses without a reconnect.
func ResolveReconnectForfeit(state *cards.GameState, lobby LobbySeats, forfeitingPlayerID string) ForfeitResult {
	if state.Phase == cards.PhaseCompleted {
		return forfeitFail(ForfeitInvalidState, "game is already completed")
	}
	seat, ok := lobby.SeatOf(forfeitingPlayerID)
	if !ok {
		return forfeitFail(ForfeitInvalidAction, "forfeiting player is not seated in this lobby")
	}

	next := state.Clone()
	forfeitingTeam := cards.TeamOf(seat)
	winningTeam := cards.OpposingTeam(forfeitingTeam)

	next.Phase = cards.PhaseCompleted
	next.Winner = &winningTeam
	if winningTeam == cards.TeamA {
		if next.Scores.TeamA < next.TargetScore {
			next.Scores.TeamA = next.TargetScore
		}
	} else {
		if next.Scores.TeamB < next.TargetScore {
			next.Scores.TeamB = next.TargetScore
		}
	}
	return forfeitOK(next)
}

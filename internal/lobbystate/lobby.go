// Package lobbystate implements spec §4.3 "Lobby State": pure transitions
// over seat occupancy and phase, mirroring the {ok, code, message} result
// shape of the card rules engine.
package lobbystate

import (
	"strings"

	"github.com/seanwolter/fun-euchre/internal/cards"
)

// Phase is the lifecycle stage of a lobby.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseInGame   Phase = "in_game"
	PhaseCompleted Phase = "completed"
)

// Code is one of the reject codes a lobby transition can return.
type Code string

const (
	CodeInvalidAction Code = "INVALID_ACTION"
	CodeInvalidState  Code = "INVALID_STATE"
	CodeUnauthorized  Code = "UNAUTHORIZED"
)

// SeatState is a single seat's occupancy.
type SeatState struct {
	Seat        cards.Seat `json:"seat"`
	Team        cards.Team `json:"team"`
	PlayerID    string     `json:"playerId,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Connected   bool       `json:"connected"`
}

// State is the authoritative lobby record payload.
type State struct {
	LobbyID     string               `json:"lobbyId"`
	HostPlayerID string              `json:"hostPlayerId"`
	Phase       Phase                `json:"phase"`
	Seats       [4]SeatState         `json:"seats"`
}

// Clone returns a deep copy; lobby stores must never leak mutable state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// Result is the uniform pure-transition return shape.
type Result struct {
	OK      bool
	State   *State
	Code    Code
	Message string
}

func ok(s *State) Result { return Result{OK: true, State: s} }
func fail(code Code, msg string) Result { return Result{OK: false, Code: code, Message: msg} }

// Create constructs a fresh waiting lobby with the host seated at north.
func Create(lobbyID, hostPlayerID, hostDisplayName string) Result {
	name := strings.TrimSpace(hostDisplayName)
	if name == "" {
		return fail(CodeInvalidAction, "display name must not be empty")
	}
	var seats [4]SeatState
	for i, seat := range cards.SeatOrder {
		seats[i] = SeatState{Seat: seat, Team: cards.TeamOf(seat)}
	}
	seats[0].PlayerID = hostPlayerID
	seats[0].DisplayName = name
	seats[0].Connected = true

	return ok(&State{
		LobbyID:      lobbyID,
		HostPlayerID: hostPlayerID,
		Phase:        PhaseWaiting,
		Seats:        seats,
	})
}

// Join seats playerID at the first open seat in north->east->south->west
// order.
func Join(s *State, playerID, displayName string) Result {
	if s.Phase != PhaseWaiting {
		return fail(CodeInvalidState, "lobby is not accepting joins")
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		return fail(CodeInvalidAction, "display name must not be empty")
	}
	for _, seat := range s.Seats {
		if seat.PlayerID == playerID {
			return fail(CodeInvalidAction, "player already seated in this lobby")
		}
	}
	next := s.Clone()
	for i := range next.Seats {
		if next.Seats[i].PlayerID == "" {
			next.Seats[i].PlayerID = playerID
			next.Seats[i].DisplayName = name
			next.Seats[i].Connected = true
			return ok(next)
		}
	}
	return fail(CodeInvalidState, "lobby is full")
}

// UpdateDisplayName renames a seated player. Only legal in PhaseWaiting.
func UpdateDisplayName(s *State, playerID, displayName string) Result {
	if s.Phase != PhaseWaiting {
		return fail(CodeInvalidState, "display name can only change while waiting")
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		return fail(CodeInvalidAction, "display name must not be empty")
	}
	next := s.Clone()
	for i := range next.Seats {
		if next.Seats[i].PlayerID == playerID {
			next.Seats[i].DisplayName = name
			return ok(next)
		}
	}
	return fail(CodeUnauthorized, "player is not seated in this lobby")
}

// SetConnection updates a seated player's connectivity. Authorized for any
// seated player regardless of phase.
func SetConnection(s *State, playerID string, connected bool) Result {
	next := s.Clone()
	for i := range next.Seats {
		if next.Seats[i].PlayerID == playerID {
			next.Seats[i].Connected = connected
			return ok(next)
		}
	}
	return fail(CodeUnauthorized, "player is not seated in this lobby")
}

// Start transitions the lobby from waiting to in_game. Only the host may
// start, and only once all four seats are filled.
func Start(s *State, actorPlayerID string) Result {
	if s.Phase != PhaseWaiting {
		return fail(CodeInvalidState, "lobby has already started or completed")
	}
	if actorPlayerID != s.HostPlayerID {
		return fail(CodeUnauthorized, "only the host may start the game")
	}
	for _, seat := range s.Seats {
		if seat.PlayerID == "" {
			return fail(CodeInvalidAction, "all four seats must be filled to start")
		}
	}
	next := s.Clone()
	next.Phase = PhaseInGame
	return ok(next)
}

// Complete transitions the lobby to completed, e.g. once its game reaches
// a terminal phase.
func Complete(s *State) Result {
	next := s.Clone()
	next.Phase = PhaseCompleted
	return ok(next)
}

// ReassignHost moves host privileges to the lowest-seated still-present
// player (SPEC_FULL.md "Supplemented Features": host handoff idiom).
func ReassignHost(s *State) Result {
	next := s.Clone()
	for _, seat := range next.Seats {
		if seat.PlayerID != "" {
			next.HostPlayerID = seat.PlayerID
			return ok(next)
		}
	}
	return ok(next)
}

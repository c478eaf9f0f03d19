// Package dispatch implements spec §4.8 "Command Dispatchers": identity
// resolution, envelope validation, pure-transition invocation, store
// persistence, outbound event emission, and broker fan-out for both the
// lobby and game command families.
package dispatch

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/seanwolter/fun-euchre/internal/broker"
	"github.com/seanwolter/fun-euchre/internal/cards"
	"github.com/seanwolter/fun-euchre/internal/clock"
	"github.com/seanwolter/fun-euchre/internal/idgen"
	"github.com/seanwolter/fun-euchre/internal/lobbystate"
	"github.com/seanwolter/fun-euchre/internal/metrics"
	"github.com/seanwolter/fun-euchre/internal/protocol"
	"github.com/seanwolter/fun-euchre/internal/snapshot"
	"github.com/seanwolter/fun-euchre/internal/store"
)

// Identity carries the resolved player/session/lobby triple a command
// acted under, along with the reconnect token the caller should hold on
// to (minted on create/join, unchanged on later commands).
type Identity struct {
	PlayerID       string
	SessionID      string
	LobbyID        string
	ReconnectToken string
}

// Result is what a dispatcher returns to its transport adapter.
type Result struct {
	OK       bool
	Outbound []protocol.Outbound
	Identity *Identity
}

// Lobby bundles everything the lobby command dispatcher needs.
type Lobby struct {
	Clock     clock.Clock
	IDs       idgen.Factory
	Tokens    *idgen.TokenManager
	Lobbies   *store.LobbyStore
	Games     *store.GameStore
	Sessions  *store.SessionStore
	Broker    *broker.Broker
	Checkpoint *snapshot.Checkpointer
	Metrics   *metrics.Metrics
	Validate  *validator.Validate
	Log       *zap.SugaredLogger
}

func rejected(requestID string, code protocol.RejectCode, message string) protocol.Outbound {
	return protocol.Outbound{
		Version: protocol.EnvelopeVersion,
		Type:    protocol.TypeActionRejected,
		Payload: protocol.ActionRejectedPayload{RequestID: requestID, Code: code, Message: message},
	}
}

func lobbyStateEvent(s *lobbystate.State) protocol.Outbound {
	var seats [4]protocol.LobbySeatProjection
	for i, seat := range s.Seats {
		seats[i] = protocol.LobbySeatProjection{
			Seat: seat.Seat, Team: seat.Team, PlayerID: seat.PlayerID,
			DisplayName: seat.DisplayName, Connected: seat.Connected,
		}
	}
	return protocol.Outbound{
		Version: protocol.EnvelopeVersion,
		Type:    protocol.TypeLobbyState,
		Payload: protocol.LobbyStatePayload{
			LobbyID: s.LobbyID, HostPlayerID: s.HostPlayerID, Phase: string(s.Phase), Seats: seats,
		},
	}
}

func codeFromLobby(c lobbystate.Code) protocol.RejectCode {
	switch c {
	case lobbystate.CodeInvalidAction:
		return protocol.CodeInvalidAction
	case lobbystate.CodeInvalidState:
		return protocol.CodeInvalidState
	case lobbystate.CodeUnauthorized:
		return protocol.CodeUnauthorized
	default:
		return protocol.CodeInvalidAction
	}
}

func (d *Lobby) lobbyRoom(lobbyID string) broker.RoomID { return broker.LobbyRoom(lobbyID) }

func (d *Lobby) persistAndBroadcast(lobbyID string, next *lobbystate.State) protocol.Outbound {
	nowMs := d.Clock.NowMs()
	d.Lobbies.Upsert(lobbyID, next, nowMs)
	evt := lobbyStateEvent(next)
	d.Broker.Broadcast(d.lobbyRoom(lobbyID), evt, true)
	if d.Checkpoint != nil {
		d.Checkpoint.Schedule()
	}
	return evt
}

func (d *Lobby) observe(commandType string, result Result) Result {
	if d.Metrics == nil {
		return result
	}
	d.Metrics.ObserveCommand(commandType)
	if result.OK {
		d.Metrics.ObserveAccepted(commandType)
	} else {
		for _, o := range result.Outbound {
			if p, ok := o.Payload.(protocol.ActionRejectedPayload); ok {
				d.Metrics.ObserveRejected(commandType, string(p.Code))
			}
		}
	}
	return result
}

// Create handles lobby.create: mints a fresh player/session/lobby
// identity triple, seats the caller as host, and returns the minted
// reconnect token alongside the first lobby.state projection.
func (d *Lobby) Create(requestID string, payload protocol.LobbyCreatePayload) Result {
	if err := d.Validate.Struct(payload); err != nil {
		return d.observe(protocol.CmdLobbyCreate, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, "invalid lobby.create payload: "+err.Error()),
		}})
	}
	nowMs := d.Clock.NowMs()
	lobbyID := d.IDs.New("lobby")
	playerID := d.IDs.New("player")
	sessionID := d.IDs.New("session")

	result := lobbystate.Create(lobbyID, playerID, payload.DisplayName)
	if !result.OK {
		return d.observe(protocol.CmdLobbyCreate, Result{Outbound: []protocol.Outbound{
			rejected(requestID, codeFromLobby(result.Code), result.Message),
		}})
	}

	token, err := d.Tokens.Issue(sessionID, playerID, lobbyID, nowMs)
	if err != nil {
		return d.observe(protocol.CmdLobbyCreate, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, fmt.Sprintf("failed to mint reconnect token: %v", err)),
		}})
	}

	d.Sessions.Upsert(sessionID, &store.SessionPayload{
		SessionID: sessionID, PlayerID: playerID, LobbyID: lobbyID,
		ReconnectToken: token, Connected: true,
	}, nowMs)

	evt := d.persistAndBroadcast(lobbyID, result.State)
	return d.observe(protocol.CmdLobbyCreate, Result{
		OK:       true,
		Outbound: []protocol.Outbound{evt},
		Identity: &Identity{PlayerID: playerID, SessionID: sessionID, LobbyID: lobbyID, ReconnectToken: token},
	})
}

// Join handles lobby.join: resolves the caller's identity either from a
// supplied reconnect token (rejoin) or mints a fresh one (new player).
func (d *Lobby) Join(requestID string, payload protocol.LobbyJoinPayload) Result {
	if err := d.Validate.Struct(payload); err != nil {
		return d.observe(protocol.CmdLobbyJoin, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, "invalid lobby.join payload: "+err.Error()),
		}})
	}
	nowMs := d.Clock.NowMs()
	rec, ok := d.Lobbies.Get(payload.LobbyID)
	if !ok {
		return d.observe(protocol.CmdLobbyJoin, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidState, fmt.Sprintf("lobby %q does not exist", payload.LobbyID)),
		}})
	}

	if payload.ReconnectToken != "" {
		return d.rejoin(requestID, payload, rec.Payload, nowMs)
	}

	playerID := d.IDs.New("player")
	sessionID := d.IDs.New("session")
	result := lobbystate.Join(rec.Payload, playerID, payload.DisplayName)
	if !result.OK {
		return d.observe(protocol.CmdLobbyJoin, Result{Outbound: []protocol.Outbound{
			rejected(requestID, codeFromLobby(result.Code), result.Message),
		}})
	}
	token, err := d.Tokens.Issue(sessionID, playerID, payload.LobbyID, nowMs)
	if err != nil {
		return d.observe(protocol.CmdLobbyJoin, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, fmt.Sprintf("failed to mint reconnect token: %v", err)),
		}})
	}
	d.Sessions.Upsert(sessionID, &store.SessionPayload{
		SessionID: sessionID, PlayerID: playerID, LobbyID: payload.LobbyID,
		ReconnectToken: token, Connected: true,
	}, nowMs)

	evt := d.persistAndBroadcast(payload.LobbyID, result.State)
	return d.observe(protocol.CmdLobbyJoin, Result{
		OK:       true,
		Outbound: []protocol.Outbound{evt},
		Identity: &Identity{PlayerID: playerID, SessionID: sessionID, LobbyID: payload.LobbyID, ReconnectToken: token},
	})
}

func (d *Lobby) rejoin(requestID string, payload protocol.LobbyJoinPayload, current *lobbystate.State, nowMs int64) Result {
	if d.Metrics != nil {
		d.Metrics.ReconnectAttempted.Inc()
	}
	claim, err := d.Tokens.Verify(payload.ReconnectToken, idgen.Expected{LobbyID: payload.LobbyID}, nowMs)
	if err != nil {
		if d.Metrics != nil {
			d.Metrics.ReconnectFailed.Inc()
		}
		return d.observe(protocol.CmdLobbyJoin, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeUnauthorized, "reconnect token verification failed"),
		}})
	}
	result := lobbystate.SetConnection(current, claim.PlayerID, true)
	if !result.OK {
		if d.Metrics != nil {
			d.Metrics.ReconnectFailed.Inc()
		}
		return d.observe(protocol.CmdLobbyJoin, Result{Outbound: []protocol.Outbound{
			rejected(requestID, codeFromLobby(result.Code), result.Message),
		}})
	}
	if sessRec, ok := d.Sessions.FindByPlayer(claim.PlayerID); ok {
		d.Sessions.Reconnect(sessRec.Payload.SessionID, nowMs)
	} else {
		d.Sessions.Upsert(claim.SessionID, &store.SessionPayload{
			SessionID: claim.SessionID, PlayerID: claim.PlayerID, LobbyID: payload.LobbyID,
			ReconnectToken: payload.ReconnectToken, Connected: true,
		}, nowMs)
	}
	if d.Metrics != nil {
		d.Metrics.ReconnectSucceeded.Inc()
	}

	evt := d.persistAndBroadcast(payload.LobbyID, result.State)
	var gameEvt *protocol.Outbound
	if gameID, gameRec, ok := d.Games.FindByLobby(payload.LobbyID); ok {
		ge := gameStateEvent(gameID, gameRec.Payload)
		gameEvt = &ge
	}
	outbound := []protocol.Outbound{evt}
	if gameEvt != nil {
		outbound = append(outbound, *gameEvt)
	}
	return d.observe(protocol.CmdLobbyJoin, Result{
		OK:       true,
		Outbound: outbound,
		Identity: &Identity{PlayerID: claim.PlayerID, SessionID: claim.SessionID, LobbyID: payload.LobbyID, ReconnectToken: payload.ReconnectToken},
	})
}

// UpdateName handles lobby.update_name.
func (d *Lobby) UpdateName(requestID string, payload protocol.LobbyUpdateNamePayload) Result {
	if err := d.Validate.Struct(payload); err != nil {
		return d.observe(protocol.CmdLobbyUpdateName, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, "invalid lobby.update_name payload: "+err.Error()),
		}})
	}
	rec, ok := d.Lobbies.Get(payload.LobbyID)
	if !ok {
		return d.observe(protocol.CmdLobbyUpdateName, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidState, fmt.Sprintf("lobby %q does not exist", payload.LobbyID)),
		}})
	}
	result := lobbystate.UpdateDisplayName(rec.Payload, payload.PlayerID, payload.DisplayName)
	if !result.OK {
		return d.observe(protocol.CmdLobbyUpdateName, Result{Outbound: []protocol.Outbound{
			rejected(requestID, codeFromLobby(result.Code), result.Message),
		}})
	}
	evt := d.persistAndBroadcast(payload.LobbyID, result.State)
	return d.observe(protocol.CmdLobbyUpdateName, Result{OK: true, Outbound: []protocol.Outbound{evt}})
}

// Start handles lobby.start: transitions the lobby to in_game and deals
// the first hand of a fresh game.
func (d *Lobby) Start(requestID string, payload protocol.LobbyStartPayload) Result {
	if err := d.Validate.Struct(payload); err != nil {
		return d.observe(protocol.CmdLobbyStart, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, "invalid lobby.start payload: "+err.Error()),
		}})
	}
	rec, ok := d.Lobbies.Get(payload.LobbyID)
	if !ok {
		return d.observe(protocol.CmdLobbyStart, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidState, fmt.Sprintf("lobby %q does not exist", payload.LobbyID)),
		}})
	}
	result := lobbystate.Start(rec.Payload, payload.ActorPlayerID)
	if !result.OK {
		return d.observe(protocol.CmdLobbyStart, Result{Outbound: []protocol.Outbound{
			rejected(requestID, codeFromLobby(result.Code), result.Message),
		}})
	}

	nowMs := d.Clock.NowMs()
	gameID := d.IDs.New("game")
	game := cards.NewHand(cards.North, 1, cards.Scores{}, 10, nil)
	game.Seats = make(map[cards.Seat]string, 4)
	for _, seat := range result.State.Seats {
		game.Seats[seat.Seat] = seat.PlayerID
	}
	d.Games.UpsertForLobby(gameID, payload.LobbyID, game, nowMs)

	lobbyEvt := d.persistAndBroadcast(payload.LobbyID, result.State)
	gameEvt := gameStateEvent(gameID, game)
	d.Broker.Broadcast(broker.GameRoom(gameID), gameEvt, true)
	if d.Metrics != nil {
		d.Metrics.GamesStarted.Inc()
	}
	return d.observe(protocol.CmdLobbyStart, Result{OK: true, Outbound: []protocol.Outbound{lobbyEvt, gameEvt}})
}

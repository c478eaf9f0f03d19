package dispatch

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/seanwolter/fun-euchre/internal/broker"
	"github.com/seanwolter/fun-euchre/internal/cards"
	"github.com/seanwolter/fun-euchre/internal/clock"
	"github.com/seanwolter/fun-euchre/internal/gamemanager"
	"github.com/seanwolter/fun-euchre/internal/metrics"
	"github.com/seanwolter/fun-euchre/internal/protocol"
	"github.com/seanwolter/fun-euchre/internal/snapshot"
	"github.com/seanwolter/fun-euchre/internal/store"
)

// Game bundles everything the game command dispatcher needs.
type Game struct {
	Clock      clock.Clock
	Lobbies    *store.LobbyStore
	Games      *store.GameStore
	Sessions   *store.SessionStore
	Broker     *broker.Broker
	Manager    *gamemanager.Manager
	Checkpoint *snapshot.Checkpointer
	Metrics    *metrics.Metrics
	Validate   *validator.Validate
	Log        *zap.SugaredLogger
}

func codeFromGameReject(c cards.RejectCode) protocol.RejectCode {
	switch c {
	case cards.RejectNotYourTurn:
		return protocol.CodeNotYourTurn
	case cards.RejectInvalidAction:
		return protocol.CodeInvalidAction
	case cards.RejectInvalidState:
		return protocol.CodeInvalidState
	default:
		return protocol.CodeInvalidAction
	}
}

func turnSeat(g *cards.GameState) cards.Seat {
	switch g.Phase {
	case cards.PhaseRound1Bidding, cards.PhaseRound2Bidding:
		if g.Bidding != nil {
			return g.Bidding.CurrentSeat
		}
	case cards.PhasePlay:
		return g.CurrentTurn
	}
	return g.Dealer
}

func trickNumber(g *cards.GameState) int {
	total := 0
	for _, n := range g.TricksWon {
		total += n
	}
	if g.Trick != nil {
		return total + 1
	}
	return total
}

func gameStateEvent(gameID string, g *cards.GameState) protocol.Outbound {
	return protocol.Outbound{
		Version: protocol.EnvelopeVersion,
		Type:    protocol.TypeGameState,
		Payload: protocol.GameStatePayload{
			GameID: gameID, HandNumber: g.HandNumber, TrickNumber: trickNumber(g),
			Dealer: g.Dealer, Turn: turnSeat(g), Trump: g.Trump, Phase: g.Phase,
			Maker: g.Maker, Alone: g.Alone, PartnerSitsOut: g.PartnerSitsOut,
			Bidding: g.Bidding, Trick: g.Trick, Scores: g.Scores, Winner: g.Winner,
		},
	}
}

func legalActionsFor(g *cards.GameState, seat cards.Seat) []string {
	if g.Phase == cards.PhaseRound1Bidding && g.Bidding != nil && g.Bidding.CurrentSeat == seat {
		return []string{protocol.CmdGameOrderUp, protocol.CmdGamePass}
	}
	if g.Phase == cards.PhaseRound2Bidding && g.Bidding != nil && g.Bidding.CurrentSeat == seat {
		return []string{protocol.CmdGameCallTrump, protocol.CmdGamePass}
	}
	if g.Phase == cards.PhasePlay && g.CurrentTurn == seat {
		return []string{protocol.CmdGamePlayCard}
	}
	return nil
}

func gamePrivateStateEvent(gameID string, g *cards.GameState, seat cards.Seat) protocol.Outbound {
	hand := g.Hands[seat]
	ids := make([]string, 0, len(hand))
	for _, c := range hand {
		ids = append(ids, c.ID())
	}
	return protocol.Outbound{
		Version: protocol.EnvelopeVersion,
		Type:    protocol.TypeGamePrivateState,
		Payload: protocol.GamePrivateStatePayload{
			GameID: gameID, Seat: seat, Phase: g.Phase, HandCardIDs: ids, LegalActions: legalActionsFor(g, seat),
		},
	}
}

// broadcastGame publishes the public projection to the game room and the
// per-seat private projection to each seated, connected session.
func (d *Game) broadcastGame(gameID string, g *cards.GameState) []protocol.Outbound {
	public := gameStateEvent(gameID, g)
	d.Broker.Broadcast(broker.GameRoom(gameID), public, true)
	outbound := []protocol.Outbound{public}
	for seat, playerID := range g.Seats {
		if playerID == "" {
			continue
		}
		if sess, ok := d.Sessions.FindByPlayer(playerID); ok {
			_ = d.Broker.Send(sess.Payload.SessionID, gamePrivateStateEvent(gameID, g, seat))
		}
	}
	return outbound
}

type transition func(g *cards.GameState) cards.Result

func (d *Game) run(requestID, commandType, gameID string, actorSeat cards.Seat, fn transition) Result {
	sub := d.Manager.Submit(gameID, requestID, nil, func(_ string, _ any) (any, []any, error) {
		rec, ok := d.Games.Get(gameID)
		if !ok {
			return nil, []any{rejected(requestID, protocol.CodeInvalidState, fmt.Sprintf("game %q does not exist", gameID))}, fmt.Errorf("game not found")
		}
		result := fn(rec.Payload)
		if !result.OK {
			return nil, []any{rejected(requestID, codeFromGameReject(result.Reject.Code), result.Reject.Message)}, fmt.Errorf("rejected")
		}
		nowMs := d.Clock.NowMs()
		d.Games.UpsertForLobby(gameID, d.Games.LobbyIDFor(gameID), result.State, nowMs)
		return result.State, nil, nil
	})

	if !sub.Persisted {
		outbound := make([]protocol.Outbound, 0, len(sub.Outbound))
		for _, o := range sub.Outbound {
			switch v := o.(type) {
			case protocol.Outbound:
				outbound = append(outbound, v)
			case string:
				outbound = append(outbound, rejected(requestID, protocol.CodeInvalidAction, v+" for game \""+gameID+"\""))
			}
		}
		return d.observe(commandType, Result{Outbound: outbound})
	}
	g := sub.State.(*cards.GameState)
	outbound := d.broadcastGame(gameID, g)
	if d.Checkpoint != nil {
		d.Checkpoint.Schedule()
	}
	if g.Phase == cards.PhaseCompleted && d.Metrics != nil {
		d.Metrics.GamesCompleted.Inc()
	}
	return d.observe(commandType, Result{OK: true, Outbound: outbound})
}

func (d *Game) observe(commandType string, result Result) Result {
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

// PlayCard handles game.play_card.
func (d *Game) PlayCard(requestID string, payload protocol.GamePlayCardPayload) Result {
	if err := d.Validate.Struct(payload); err != nil {
		return d.observe(protocol.CmdGamePlayCard, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, "invalid game.play_card payload: "+err.Error()),
		}})
	}
	card, ok := cards.ParseCardID(payload.CardID)
	if !ok {
		return d.observe(protocol.CmdGamePlayCard, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, fmt.Sprintf("invalid cardId %q", payload.CardID)),
		}})
	}
	return d.run(requestID, protocol.CmdGamePlayCard, payload.GameID, payload.ActorSeat, func(g *cards.GameState) cards.Result {
		return cards.PlayCard(g, payload.ActorSeat, card)
	})
}

// Pass handles game.pass.
func (d *Game) Pass(requestID string, payload protocol.GamePassPayload) Result {
	if err := d.Validate.Struct(payload); err != nil {
		return d.observe(protocol.CmdGamePass, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, "invalid game.pass payload: "+err.Error()),
		}})
	}
	return d.run(requestID, protocol.CmdGamePass, payload.GameID, payload.ActorSeat, func(g *cards.GameState) cards.Result {
		return cards.Pass(g, payload.ActorSeat, nil)
	})
}

// OrderUp handles game.order_up.
func (d *Game) OrderUp(requestID string, payload protocol.GameOrderUpPayload) Result {
	if err := d.Validate.Struct(payload); err != nil {
		return d.observe(protocol.CmdGameOrderUp, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, "invalid game.order_up payload: "+err.Error()),
		}})
	}
	return d.run(requestID, protocol.CmdGameOrderUp, payload.GameID, payload.ActorSeat, func(g *cards.GameState) cards.Result {
		return cards.OrderUp(g, payload.ActorSeat, payload.Alone)
	})
}

// CallTrump handles game.call_trump.
func (d *Game) CallTrump(requestID string, payload protocol.GameCallTrumpPayload) Result {
	if err := d.Validate.Struct(payload); err != nil {
		return d.observe(protocol.CmdGameCallTrump, Result{Outbound: []protocol.Outbound{
			rejected(requestID, protocol.CodeInvalidAction, "invalid game.call_trump payload: "+err.Error()),
		}})
	}
	return d.run(requestID, protocol.CmdGameCallTrump, payload.GameID, payload.ActorSeat, func(g *cards.GameState) cards.Result {
		return cards.CallTrump(g, payload.ActorSeat, payload.Trump, payload.Alone)
	})
}

// Package protocol defines the wire envelope and payload shapes of spec
// §6 "External Interfaces": the client<->server command/projection
// contract that every transport adapter and dispatcher speaks.
package protocol

import "github.com/seanwolter/fun-euchre/internal/cards"

// EnvelopeVersion is the only version accepted on either direction.
const EnvelopeVersion = 1

// Inbound is a client->server message.
type Inbound struct {
	Version   int    `json:"version" validate:"required,eq=1"`
	Type      string `json:"type" validate:"required"`
	RequestID string `json:"requestId" validate:"required"`
	Payload   any    `json:"payload"`
}

// Ordering is attached to outbound events published through a room.
type Ordering struct {
	Sequence    uint64 `json:"sequence"`
	EmittedAtMs int64  `json:"emittedAtMs"`
}

// Outbound is a server->client message.
type Outbound struct {
	Version   int       `json:"version"`
	Type      string    `json:"type"`
	Ordering  *Ordering `json:"ordering,omitempty"`
	Payload   any       `json:"payload"`
}

// Clone returns a deep-enough copy of an outbound event for safe
// independent delivery to multiple sinks. Payload types are themselves
// immutable snapshots (store records are cloned before projection), so
// only the envelope and ordering pointer need copying.
func (o Outbound) Clone() Outbound {
	out := o
	if o.Ordering != nil {
		ord := *o.Ordering
		out.Ordering = &ord
	}
	return out
}

// Outbound message type names.
const (
	TypeLobbyState      = "lobby.state"
	TypeGameState       = "game.state"
	TypeGamePrivateState = "game.private_state"
	TypeActionRejected  = "action.rejected"
	TypeSystemNotice    = "system.notice"
	TypeWSReady         = "ws.ready"
	TypeWSSubscribed    = "ws.subscribed"
)

// Inbound command type names.
const (
	CmdLobbyCreate     = "lobby.create"
	CmdLobbyJoin       = "lobby.join"
	CmdLobbyUpdateName = "lobby.update_name"
	CmdLobbyStart      = "lobby.start"
	CmdGamePlayCard    = "game.play_card"
	CmdGamePass        = "game.pass"
	CmdGameOrderUp     = "game.order_up"
	CmdGameCallTrump   = "game.call_trump"
)

// RejectCode enumerates the closed set of reject codes spec §7 allows.
type RejectCode string

const (
	CodeNotYourTurn   RejectCode = "NOT_YOUR_TURN"
	CodeInvalidAction RejectCode = "INVALID_ACTION"
	CodeInvalidState  RejectCode = "INVALID_STATE"
	CodeUnauthorized  RejectCode = "UNAUTHORIZED"
)

// Severity is the level of a system.notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Command payloads (client->server).

type LobbyCreatePayload struct {
	DisplayName string `json:"displayName" validate:"required,max=64"`
}

type LobbyJoinPayload struct {
	LobbyID        string `json:"lobbyId" validate:"required"`
	DisplayName    string `json:"displayName" validate:"required,max=64"`
	ReconnectToken string `json:"reconnectToken,omitempty"`
}

type LobbyUpdateNamePayload struct {
	LobbyID     string `json:"lobbyId" validate:"required"`
	PlayerID    string `json:"playerId" validate:"required"`
	DisplayName string `json:"displayName" validate:"required,max=64"`
}

type LobbyStartPayload struct {
	LobbyID       string `json:"lobbyId" validate:"required"`
	ActorPlayerID string `json:"actorPlayerId" validate:"required"`
}

type GamePlayCardPayload struct {
	GameID    string     `json:"gameId" validate:"required"`
	ActorSeat cards.Seat `json:"actorSeat" validate:"required"`
	CardID    string     `json:"cardId" validate:"required"`
}

type GamePassPayload struct {
	GameID    string     `json:"gameId" validate:"required"`
	ActorSeat cards.Seat `json:"actorSeat" validate:"required"`
}

type GameOrderUpPayload struct {
	GameID    string     `json:"gameId" validate:"required"`
	ActorSeat cards.Seat `json:"actorSeat" validate:"required"`
	Alone     bool       `json:"alone,omitempty"`
}

type GameCallTrumpPayload struct {
	GameID    string     `json:"gameId" validate:"required"`
	ActorSeat cards.Seat `json:"actorSeat" validate:"required"`
	Trump     cards.Suit `json:"trump" validate:"required"`
	Alone     bool       `json:"alone,omitempty"`
}

type SubscribePayload struct {
	LobbyID string `json:"lobbyId" validate:"required"`
	GameID  string `json:"gameId,omitempty"`
}

// Projection payloads (server->client).

type LobbyStatePayload struct {
	LobbyID      string                    `json:"lobbyId"`
	HostPlayerID string                    `json:"hostPlayerId"`
	Phase        string                    `json:"phase"`
	Seats        [4]LobbySeatProjection    `json:"seats"`
}

type LobbySeatProjection struct {
	Seat        cards.Seat `json:"seat"`
	Team        cards.Team `json:"team"`
	PlayerID    string     `json:"playerId,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Connected   bool       `json:"connected"`
}

type GameStatePayload struct {
	GameID         string            `json:"gameId"`
	HandNumber     int               `json:"handNumber"`
	TrickNumber    int               `json:"trickNumber"`
	Dealer         cards.Seat        `json:"dealer"`
	Turn           cards.Seat        `json:"turn"`
	Trump          *cards.Suit       `json:"trump"`
	Phase          cards.Phase       `json:"phase"`
	Maker          *cards.Seat       `json:"maker,omitempty"`
	Alone          bool              `json:"alone"`
	PartnerSitsOut *cards.Seat       `json:"partnerSitsOut,omitempty"`
	Bidding        *cards.Bidding    `json:"bidding,omitempty"`
	Trick          *cards.Trick      `json:"trick,omitempty"`
	Scores         cards.Scores      `json:"scores"`
	Winner         *cards.Team       `json:"winner,omitempty"`
}

type GamePrivateStatePayload struct {
	GameID        string      `json:"gameId"`
	Seat          cards.Seat  `json:"seat"`
	Phase         cards.Phase `json:"phase"`
	HandCardIDs   []string    `json:"handCardIds"`
	LegalActions  []string    `json:"legalActions"`
}

type ActionRejectedPayload struct {
	RequestID string     `json:"requestId,omitempty"`
	Code      RejectCode `json:"code"`
	Message   string     `json:"message"`
}

type SystemNoticePayload struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

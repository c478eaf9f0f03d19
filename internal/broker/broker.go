// Package broker implements spec §4.7 "Fan-out Broker": session<->room
// membership and ordered, per-room event publication. Only the
// authoritative domain-transition path (the dispatchers) may publish;
// the broker itself holds no opinion about command validity.
package broker

import (
	"sync"

	"github.com/seanwolter/fun-euchre/internal/protocol"
)

// RoomID is "lobby:<LobbyId>" or "game:<GameId>".
type RoomID string

func LobbyRoom(lobbyID string) RoomID { return RoomID("lobby:" + lobbyID) }
func GameRoom(gameID string) RoomID   { return RoomID("game:" + gameID) }

// Sink receives cloned outbound events for one connected session. A
// transport adapter (the WebSocket handler) implements Send; the broker
// never inspects delivery failures beyond reporting them to the caller.
type Sink interface {
	Send(evt protocol.Outbound) error
}

// PublishResult is returned by a broadcast call.
type PublishResult struct {
	OK                  bool
	Code                string
	DeliveredSessionIDs []string
	DeliveredEventCount int
	SendErrors          map[string]error
}

// Broker owns session<->room membership and assigns monotonic
// per-room sequence numbers to every published event.
type Broker struct {
	mu            sync.Mutex
	sinks         map[string]Sink            // sessionId -> sink
	roomMembers   map[RoomID]map[string]bool // roomId -> set<sessionId>
	sessionRooms  map[string]map[RoomID]bool // sessionId -> set<roomId>
	lastSequence  map[RoomID]uint64
	nowMs         func() int64
}

// New constructs an empty Broker. nowFn supplies ordering.emittedAtMs
// and should be backed by the orchestrator's injected clock.
func New(nowFn func() int64) *Broker {
	return &Broker{
		sinks:        make(map[string]Sink),
		roomMembers:  make(map[RoomID]map[string]bool),
		sessionRooms: make(map[string]map[RoomID]bool),
		lastSequence: make(map[RoomID]uint64),
		nowMs:        nowFn,
	}
}

// ConnectSession registers sink for sessionID, evicting any prior
// binding under the same id.
func (b *Broker) ConnectSession(sessionID string, sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks[sessionID] = sink
}

// DisconnectSession removes sessionID's sink and membership in every
// room it was bound to.
func (b *Broker) DisconnectSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sinks, sessionID)
	for room := range b.sessionRooms[sessionID] {
		delete(b.roomMembers[room], sessionID)
	}
	delete(b.sessionRooms, sessionID)
}

// BindSession joins sessionID to room. Idempotent.
func (b *Broker) BindSession(sessionID string, room RoomID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.roomMembers[room] == nil {
		b.roomMembers[room] = make(map[string]bool)
	}
	b.roomMembers[room][sessionID] = true
	if b.sessionRooms[sessionID] == nil {
		b.sessionRooms[sessionID] = make(map[RoomID]bool)
	}
	b.sessionRooms[sessionID][room] = true
}

// UnbindSession removes sessionID from room. Idempotent.
func (b *Broker) UnbindSession(sessionID string, room RoomID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.roomMembers[room], sessionID)
	delete(b.sessionRooms[sessionID], room)
}

// Broadcast atomically assigns ordering to evt and fans it out to every
// member of room in FIFO order. trusted must be true: only the
// dispatcher layer, which owns the single write path into the stores,
// may call this with trusted=true.
func (b *Broker) Broadcast(room RoomID, evt protocol.Outbound, trusted bool) PublishResult {
	if !trusted {
		return PublishResult{OK: false, Code: "UNAUTHORIZED_SOURCE"}
	}
	b.mu.Lock()
	b.lastSequence[room]++
	seq := b.lastSequence[room]
	emitted := b.nowMs()
	if emitted < 0 {
		emitted = 0
	}
	evt.Ordering = &protocol.Ordering{Sequence: seq, EmittedAtMs: emitted}

	members := make([]string, 0, len(b.roomMembers[room]))
	for sid := range b.roomMembers[room] {
		members = append(members, sid)
	}
	sinks := make(map[string]Sink, len(members))
	for _, sid := range members {
		if s, ok := b.sinks[sid]; ok {
			sinks[sid] = s
		}
	}
	b.mu.Unlock()

	result := PublishResult{OK: true, SendErrors: make(map[string]error)}
	for _, sid := range members {
		sink, ok := sinks[sid]
		if !ok {
			continue
		}
		if err := sink.Send(evt.Clone()); err != nil {
			result.SendErrors[sid] = err
			continue
		}
		result.DeliveredSessionIDs = append(result.DeliveredSessionIDs, sid)
		result.DeliveredEventCount++
	}
	return result
}

// Send delivers evt directly to a single session's sink, bypassing room
// membership and sequence assignment. Used for per-seat
// game.private_state projections, which are not room-ordered.
func (b *Broker) Send(sessionID string, evt protocol.Outbound) error {
	b.mu.Lock()
	sink, ok := b.sinks[sessionID]
	b.mu.Unlock()
	if !ok {
		return nil
	}
	return sink.Send(evt.Clone())
}

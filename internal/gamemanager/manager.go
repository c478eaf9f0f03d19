// Package gamemanager implements spec §4.5 "Game Manager": a per-gameId
// command serializer that guarantees FIFO processing and at most one
// in-flight transition per game, with a bounded dedupe window over
// recently processed request ids.
package gamemanager

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// dedupeSize bounds the per-game LRU of recently processed requestIds.
const dedupeSize = 256

// Processor executes one accepted submission against the latest stored
// state and returns the new state plus outbound events, or a failure.
type Processor func(requestID string, event any) (newState any, outbound []any, err error)

// SubmitResult is returned by Submit.
type SubmitResult struct {
	Persisted bool
	State     any
	Outbound  []any
}

type gameQueue struct {
	mu      sync.Mutex // serializes processing for this game
	dedupe  *lru.Cache[string, struct{}]
	pending chan submission
	once    sync.Once
}

type submission struct {
	requestID string
	event     any
	processor Processor
	reply     chan SubmitResult
}

// Manager fans command submissions out to one serialized worker per
// gameId; distinct gameIds never block one another.
type Manager struct {
	mu    sync.Mutex
	games map[string]*gameQueue
}

// New constructs an empty Manager.
func New() *Manager {
	return &Manager{games: make(map[string]*gameQueue)}
}

func (m *Manager) queueFor(gameID string) *gameQueue {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.games[gameID]
	if !ok {
		dedupe, _ := lru.New[string, struct{}](dedupeSize)
		q = &gameQueue{dedupe: dedupe, pending: make(chan submission, 64)}
		m.games[gameID] = q
		go q.run()
	}
	return q
}

func (q *gameQueue) run() {
	for sub := range q.pending {
		q.mu.Lock()
		if _, dup := q.dedupe.Get(sub.requestID); dup {
			q.mu.Unlock()
			sub.reply <- SubmitResult{Persisted: false, Outbound: []any{DuplicateRejection(sub.requestID)}}
			continue
		}
		newState, outbound, err := sub.processor(sub.requestID, sub.event)
		if err != nil {
			q.mu.Unlock()
			sub.reply <- SubmitResult{Persisted: false, Outbound: outbound}
			continue
		}
		q.dedupe.Add(sub.requestID, struct{}{})
		q.mu.Unlock()
		sub.reply <- SubmitResult{Persisted: true, State: newState, Outbound: outbound}
	}
}

// Submit enqueues event for gameID and blocks until it has been
// processed in FIFO order relative to every other submission for the
// same gameID. A duplicate requestID short-circuits before the
// processor runs, per spec §4.5 step 1.
func (m *Manager) Submit(gameID, requestID string, event any, processor Processor) SubmitResult {
	q := m.queueFor(gameID)
	q.mu.Lock()
	if _, dup := q.dedupe.Get(requestID); dup {
		q.mu.Unlock()
		return SubmitResult{Persisted: false, Outbound: []any{DuplicateRejection(requestID)}}
	}
	q.mu.Unlock()

	reply := make(chan SubmitResult, 1)
	q.pending <- submission{requestID: requestID, event: event, processor: processor, reply: reply}
	return <-reply
}

// DuplicateRejection is the canonical reject surfaced for a short-
// circuited duplicate requestId; dispatchers wrap it into their own
// protocol.Outbound action.rejected envelope.
func DuplicateRejection(requestID string) string {
	return "Duplicate requestId \"" + requestID + "\""
}

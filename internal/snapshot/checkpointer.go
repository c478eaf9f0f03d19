package snapshot

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seanwolter/fun-euchre/internal/clock"
)

// DefaultDebounceMs is the default Checkpointer debounce window from
// spec §4.10.
const DefaultDebounceMs = 75

// Checkpointer debounces persistence: Schedule marks the runtime dirty
// and arms a timer; when the timer fires it flushes once, and loops if
// further changes arrived mid-write. FlushNow forces an immediate
// synchronous flush.
type Checkpointer struct {
	mu          sync.Mutex
	clock       clock.Clock
	debounceMs  int64
	path        string
	mode        PersistenceMode
	buildDoc    func(nowMs int64) Document
	log         *zap.SugaredLogger

	dirty   bool
	pending bool
	stopped bool
}

// PersistenceMode mirrors config.PersistenceMode without importing the
// config package, avoiding a dependency cycle.
type PersistenceMode string

const (
	PersistenceDisabled PersistenceMode = "disabled"
	PersistenceFile     PersistenceMode = "file"
)

// NewCheckpointer constructs a Checkpointer. buildDoc snapshots the
// current store state; it is called once per actual flush, never per
// Schedule call.
func NewCheckpointer(c clock.Clock, mode PersistenceMode, path string, debounceMs int64, buildDoc func(nowMs int64) Document, log *zap.SugaredLogger) *Checkpointer {
	if debounceMs <= 0 {
		debounceMs = DefaultDebounceMs
	}
	return &Checkpointer{clock: c, mode: mode, path: path, debounceMs: debounceMs, buildDoc: buildDoc, log: log}
}

// Schedule marks the runtime dirty and arms the debounce timer if one is
// not already pending. Non-blocking.
func (c *Checkpointer) Schedule() {
	if c.mode != PersistenceFile {
		return
	}
	c.mu.Lock()
	c.dirty = true
	if c.pending || c.stopped {
		c.mu.Unlock()
		return
	}
	c.pending = true
	c.mu.Unlock()

	go func() {
		<-c.clock.After(time.Duration(c.debounceMs) * time.Millisecond)
		c.drain()
	}()
}

func (c *Checkpointer) drain() {
	for {
		c.mu.Lock()
		if c.stopped {
			c.pending = false
			c.mu.Unlock()
			return
		}
		if !c.dirty {
			c.pending = false
			c.mu.Unlock()
			return
		}
		c.dirty = false
		c.mu.Unlock()

		if err := c.flush(); err != nil && c.log != nil {
			c.log.Errorw("checkpoint flush failed", "path", c.path, "error", err)
		}
	}
}

func (c *Checkpointer) flush() error {
	doc := c.buildDoc(c.clock.NowMs())
	return WriteAtomic(c.path, doc)
}

// FlushNow forces an immediate synchronous flush regardless of debounce
// state, used by the orchestrator's stop() path.
func (c *Checkpointer) FlushNow() error {
	if c.mode != PersistenceFile {
		return nil
	}
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return c.flush()
}

// Stop prevents any further scheduled flush from running. Already
// in-flight debounce timers become no-ops.
func (c *Checkpointer) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
}

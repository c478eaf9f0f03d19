// Package orchestrator is the composition root of spec §4.11: it wires a
// single shared clock, id factory, one of each store, the broker, the
// game manager, the reconnect-token manager, the dispatchers, and the
// sweeper + checkpointer into one runnable object graph.
package orchestrator

import (
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/seanwolter/fun-euchre/internal/broker"
	"github.com/seanwolter/fun-euchre/internal/clock"
	"github.com/seanwolter/fun-euchre/internal/config"
	"github.com/seanwolter/fun-euchre/internal/dispatch"
	"github.com/seanwolter/fun-euchre/internal/gamemanager"
	"github.com/seanwolter/fun-euchre/internal/idgen"
	"github.com/seanwolter/fun-euchre/internal/metrics"
	"github.com/seanwolter/fun-euchre/internal/snapshot"
	"github.com/seanwolter/fun-euchre/internal/store"
	"github.com/seanwolter/fun-euchre/internal/sweeper"
)

// Runtime is the full, wired object graph.
type Runtime struct {
	Clock    clock.Clock
	Config   *config.Config
	IDs      idgen.Factory
	Tokens   *idgen.TokenManager
	Lobbies  *store.LobbyStore
	Games    *store.GameStore
	Sessions *store.SessionStore
	Broker   *broker.Broker
	Manager  *gamemanager.Manager
	Metrics  *metrics.Metrics
	Log      *zap.SugaredLogger

	LobbyDispatcher *dispatch.Lobby
	GameDispatcher  *dispatch.Game
	Sweeper         *sweeper.Sweeper
	Checkpoint      *snapshot.Checkpointer
}

// New builds the full runtime from cfg, using c as the shared injected
// clock (clock.Real{} in production, a clock.Fake in tests) and
// registerer for Prometheus metrics (nil uses the default registry).
func New(cfg *config.Config, c clock.Clock, ids idgen.Factory, log *zap.SugaredLogger, registerer prometheus.Registerer) *Runtime {
	tokenSecret := cfg.ReconnectTokenSecret
	if tokenSecret == "" {
		tokenSecret = idgen.DevSecretSentinel
	}

	lobbies := store.NewLobbyStore(cfg.LobbyTTLMs)
	games := store.NewGameStore(cfg.GameTTLMs)
	sessions := store.NewSessionStore(cfg.SessionTTLMs, cfg.ReconnectGraceMs, log)
	b := broker.New(c.NowMs)
	manager := gamemanager.New()
	m := metrics.New(registerer)
	validate := validator.New()

	r := &Runtime{
		Clock: c, Config: cfg, IDs: ids,
		Tokens:   idgen.NewTokenManager(tokenSecret, 0),
		Lobbies:  lobbies,
		Games:    games,
		Sessions: sessions,
		Broker:   b,
		Manager:  manager,
		Metrics:  m,
		Log:      log,
	}

	r.Checkpoint = snapshot.NewCheckpointer(c, snapshot.PersistenceMode(cfg.PersistenceMode), cfg.PersistencePath, snapshot.DefaultDebounceMs,
		func(nowMs int64) snapshot.Document {
			return snapshot.Create(snapshot.Stores{
				Lobbies: lobbies, Games: games, Sessions: sessions,
				GameLobbyID: games.LobbyIDFor,
			}, nowMs)
		}, log)

	r.LobbyDispatcher = &dispatch.Lobby{
		Clock: c, IDs: ids, Tokens: r.Tokens, Lobbies: lobbies, Games: games,
		Sessions: sessions, Broker: b, Checkpoint: r.Checkpoint, Metrics: m, Validate: validate, Log: log,
	}
	r.GameDispatcher = &dispatch.Game{
		Clock: c, Lobbies: lobbies, Games: games, Sessions: sessions, Broker: b,
		Manager: manager, Checkpoint: r.Checkpoint, Metrics: m, Validate: validate, Log: log,
	}
	r.Sweeper = &sweeper.Sweeper{
		Clock: c, IntervalMs: cfg.LifecycleSweepIntervalMs, GameRetentionMs: cfg.GameRetentionMs,
		Lobbies: lobbies, Games: games, Sessions: sessions, Broker: b, Checkpoint: r.Checkpoint, Metrics: m, Log: log,
	}

	if cfg.PersistenceMode == config.PersistenceFile {
		if doc, ok := snapshot.LoadAtBoot(cfg.PersistencePath, log); ok {
			snapshot.Apply(snapshot.Stores{Lobbies: lobbies, Games: games, Sessions: sessions, GameLobbyID: games.LobbyIDFor}, doc)
		}
	}

	return r
}

// Start begins background processing: the lifecycle sweeper timer.
func (r *Runtime) Start() {
	r.Sweeper.Start()
}

// Stop halts the sweeper, flushes any pending checkpoint synchronously,
// and releases the checkpointer's timer.
func (r *Runtime) Stop() {
	r.Sweeper.Stop()
	if err := r.Checkpoint.FlushNow(); err != nil && r.Log != nil {
		r.Log.Errorw("final checkpoint flush failed", "error", err)
	}
	r.Checkpoint.Stop()
}

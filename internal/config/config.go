// Package config loads the runtime's environment-driven configuration,
// spec §6 "Configuration (environment)", via viper.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/seanwolter/fun-euchre/internal/reconnect"
)

// PersistenceMode selects whether the snapshot engine writes to disk.
type PersistenceMode string

const (
	PersistenceDisabled PersistenceMode = "disabled"
	PersistenceFile     PersistenceMode = "file"
)

const (
	defaultReconnectGraceMs        = 60_000
	defaultGameRetentionMs         = 900_000
	defaultLifecycleSweepIntervalMs = 5_000
	defaultPersistencePath         = "./var/fun-euchre/runtime-snapshot.json"
	minLifecycleSweepIntervalMs    = 1_000
)

var nullLikeKeywords = map[string]bool{
	"null": true, "none": true, "off": true, "disabled": true,
}

// Config is the fully validated, defaulted runtime configuration.
type Config struct {
	ReconnectGraceMs         int64
	GameRetentionMs          int64
	SessionTTLMs             int64 // <= 0 means disabled
	LobbyTTLMs               int64
	GameTTLMs                int64
	LifecycleSweepIntervalMs int64
	PersistenceMode          PersistenceMode
	PersistencePath          string
	ReconnectTokenSecret     string
	HTTPAddr                 string
}

// Load reads FUN_EUCHRE_* environment variables, applies defaults, and
// validates every value. Invalid values fail with a descriptive error,
// per spec §6 "Invalid values fail startup with a descriptive error."
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FUN_EUCHRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)

	for _, key := range []string{
		"reconnect_grace_ms", "game_retention_ms", "session_ttl_ms",
		"lobby_ttl_ms", "game_ttl_ms", "lifecycle_sweep_interval_ms",
		"persistence_mode", "persistence_path", "reconnect_token_secret",
		"http_addr",
	} {
		_ = v.BindEnv(key)
	}
	v.SetDefault("persistence_mode", string(PersistenceDisabled))
	v.SetDefault("persistence_path", defaultPersistencePath)
	v.SetDefault("http_addr", ":8080")

	cfg := &Config{
		PersistenceMode: PersistenceMode(v.GetString("persistence_mode")),
		PersistencePath: v.GetString("persistence_path"),
		ReconnectTokenSecret: v.GetString("reconnect_token_secret"),
		HTTPAddr:        v.GetString("http_addr"),
	}

	var err error
	if cfg.ReconnectGraceMs, err = positiveMsWithMin(v, "reconnect_grace_ms", defaultReconnectGraceMs, reconnect.MinReconnectGraceMs); err != nil {
		return nil, err
	}
	if cfg.GameRetentionMs, err = positiveMsWithMin(v, "game_retention_ms", defaultGameRetentionMs, reconnect.MinGameRetentionMs); err != nil {
		return nil, err
	}
	if cfg.LifecycleSweepIntervalMs, err = positiveMsWithMin(v, "lifecycle_sweep_interval_ms", defaultLifecycleSweepIntervalMs, minLifecycleSweepIntervalMs); err != nil {
		return nil, err
	}
	if cfg.SessionTTLMs, err = nullableMs(v, "session_ttl_ms"); err != nil {
		return nil, err
	}
	if cfg.LobbyTTLMs, err = nullableMs(v, "lobby_ttl_ms"); err != nil {
		return nil, err
	}
	if cfg.GameTTLMs, err = nullableMs(v, "game_ttl_ms"); err != nil {
		return nil, err
	}

	switch cfg.PersistenceMode {
	case PersistenceDisabled, PersistenceFile:
	default:
		return nil, fmt.Errorf("config: FUN_EUCHRE_PERSISTENCE_MODE must be %q or %q, got %q", PersistenceDisabled, PersistenceFile, cfg.PersistenceMode)
	}
	if v.IsSet("reconnect_token_secret") && cfg.ReconnectTokenSecret == "" {
		return nil, fmt.Errorf("config: FUN_EUCHRE_RECONNECT_TOKEN_SECRET must be non-empty when set")
	}

	return cfg, nil
}

// positiveMsWithMin reads an integer-millisecond env var, applying
// defaultMs if unset and rejecting values below minMs.
func positiveMsWithMin(v *viper.Viper, key string, defaultMs, minMs int64) (int64, error) {
	if !v.IsSet(key) {
		return defaultMs, nil
	}
	raw := v.GetString(key)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: FUN_EUCHRE_%s must be an integer, got %q", strings.ToUpper(key), raw)
	}
	if n < minMs {
		return 0, fmt.Errorf("config: FUN_EUCHRE_%s must be >= %d, got %d", strings.ToUpper(key), minMs, n)
	}
	return n, nil
}

// nullableMs reads an integer-millisecond env var that also accepts a
// null-like keyword meaning "disabled" (represented as 0).
func nullableMs(v *viper.Viper, key string) (int64, error) {
	if !v.IsSet(key) {
		return 0, nil
	}
	raw := strings.ToLower(strings.TrimSpace(v.GetString(key)))
	if nullLikeKeywords[raw] {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: FUN_EUCHRE_%s must be a positive integer or one of null/none/off/disabled, got %q", strings.ToUpper(key), raw)
	}
	if n <= 0 {
		return 0, fmt.Errorf("config: FUN_EUCHRE_%s must be a positive integer or one of null/none/off/disabled, got %q", strings.ToUpper(key), raw)
	}
	return n, nil
}

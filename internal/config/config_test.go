package config

import "testing"

func TestLoadAppliesDefaultsWithNoEnvironmentSet(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReconnectGraceMs != defaultReconnectGraceMs {
		t.Fatalf("ReconnectGraceMs = %d, want default %d", cfg.ReconnectGraceMs, defaultReconnectGraceMs)
	}
	if cfg.GameRetentionMs != defaultGameRetentionMs {
		t.Fatalf("GameRetentionMs = %d, want default %d", cfg.GameRetentionMs, defaultGameRetentionMs)
	}
	if cfg.PersistenceMode != PersistenceDisabled {
		t.Fatalf("PersistenceMode = %q, want disabled by default", cfg.PersistenceMode)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.SessionTTLMs != 0 {
		t.Fatalf("SessionTTLMs = %d, want 0 (disabled) when unset", cfg.SessionTTLMs)
	}
}

func TestLoadParsesIntegerEnvironmentOverrides(t *testing.T) {
	t.Setenv("FUN_EUCHRE_RECONNECT_GRACE_MS", "120000")
	t.Setenv("FUN_EUCHRE_PERSISTENCE_MODE", "file")
	t.Setenv("FUN_EUCHRE_HTTP_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReconnectGraceMs != 120_000 {
		t.Fatalf("ReconnectGraceMs = %d, want 120000", cfg.ReconnectGraceMs)
	}
	if cfg.PersistenceMode != PersistenceFile {
		t.Fatalf("PersistenceMode = %q, want file", cfg.PersistenceMode)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
	}
}

func TestLoadRejectsReconnectGraceBelowMinimum(t *testing.T) {
	t.Setenv("FUN_EUCHRE_RECONNECT_GRACE_MS", "100")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want rejection of a grace window below the minimum")
	}
}

func TestLoadRejectsGameRetentionBelowMinimum(t *testing.T) {
	t.Setenv("FUN_EUCHRE_GAME_RETENTION_MS", "1000")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want rejection of a retention window below the minimum")
	}
}

func TestLoadRejectsNonIntegerMsValue(t *testing.T) {
	t.Setenv("FUN_EUCHRE_RECONNECT_GRACE_MS", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want rejection of a non-integer value")
	}
}

func TestLoadRejectsUnknownPersistenceMode(t *testing.T) {
	t.Setenv("FUN_EUCHRE_PERSISTENCE_MODE", "sqlite")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want rejection of an unsupported persistence mode")
	}
}

func TestLoadAcceptsNullLikeKeywordsForTTLs(t *testing.T) {
	for _, kw := range []string{"null", "none", "off", "disabled", "NULL", "Off"} {
		t.Run(kw, func(t *testing.T) {
			t.Setenv("FUN_EUCHRE_SESSION_TTL_MS", kw)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() with SESSION_TTL_MS=%q error = %v", kw, err)
			}
			if cfg.SessionTTLMs != 0 {
				t.Fatalf("SessionTTLMs = %d, want 0 for null-like keyword %q", cfg.SessionTTLMs, kw)
			}
		})
	}
}

func TestLoadParsesPositiveTTLValue(t *testing.T) {
	t.Setenv("FUN_EUCHRE_SESSION_TTL_MS", "30000")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SessionTTLMs != 30_000 {
		t.Fatalf("SessionTTLMs = %d, want 30000", cfg.SessionTTLMs)
	}
}

func TestLoadRejectsZeroOrNegativeTTLValue(t *testing.T) {
	t.Setenv("FUN_EUCHRE_SESSION_TTL_MS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want rejection of a zero TTL (use a null-like keyword to disable)")
	}
}

func TestLoadRejectsBlankReconnectTokenSecretWhenExplicitlySet(t *testing.T) {
	t.Setenv("FUN_EUCHRE_RECONNECT_TOKEN_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want rejection of an explicitly blank secret")
	}
}

func TestLoadAcceptsNonEmptyReconnectTokenSecret(t *testing.T) {
	t.Setenv("FUN_EUCHRE_RECONNECT_TOKEN_SECRET", "super-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReconnectTokenSecret != "super-secret" {
		t.Fatalf("ReconnectTokenSecret = %q, want super-secret", cfg.ReconnectTokenSecret)
	}
}

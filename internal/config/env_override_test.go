package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("FOLENGINE_ENGINE overrides default engine", func(t *testing.T) {
		t.Setenv("FOLENGINE_ENGINE", "sat")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "sat", cfg.Engine.Default)
	})

	t.Run("FOLENGINE_STRATEGY overrides strategy", func(t *testing.T) {
		t.Setenv("FOLENGINE_STRATEGY", "iterative")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "iterative", cfg.Engine.Strategy)
	})

	t.Run("FOLENGINE_MAX_SESSIONS overrides session cap when positive", func(t *testing.T) {
		t.Setenv("FOLENGINE_MAX_SESSIONS", "42")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, 42, cfg.Session.MaxSessions)
	})

	t.Run("FOLENGINE_MAX_SESSIONS ignores non-positive values", func(t *testing.T) {
		t.Setenv("FOLENGINE_MAX_SESSIONS", "-1")
		cfg := DefaultConfig()
		want := cfg.Session.MaxSessions
		cfg.applyEnvOverrides()
		assert.Equal(t, want, cfg.Session.MaxSessions)
	})

	t.Run("FOLENGINE_SESSION_TTL overrides ttl string", func(t *testing.T) {
		t.Setenv("FOLENGINE_SESSION_TTL", "5m")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "5m", cfg.Session.TTL)
		assert.Equal(t, 5*time.Minute, cfg.GetSessionTTL())
	})
}

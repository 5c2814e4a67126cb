package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadPathAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
auth:
  session_secret: secret
`)

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "session", cfg.Auth.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 8, cfg.Feed.Buffer)
}

func TestLoadPathRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "missing secret", body: "env: local\n"},
		{name: "unknown driver", body: "auth:\n  session_secret: s\nstore:\n  driver: etcd\n"},
		{name: "redis without url", body: "auth:\n  session_secret: s\nstore:\n  driver: redis\n"},
		{name: "postgres without dsn", body: "auth:\n  session_secret: s\nstore:\n  driver: postgres\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("REDIS_URL", "")
			t.Setenv("DATABASE_DSN", "")
			_, err := LoadPath(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadPathMissingFile(t *testing.T) {
	_, err := LoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMustLoadPathPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}

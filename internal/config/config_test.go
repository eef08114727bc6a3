package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	req.NoError(err)
	req.Equal(5000, cfg.App.Port)
	req.Equal("participants", cfg.Mongo.ParticipantsCollection)
	req.Equal("messages", cfg.Mongo.MessagesCollection)
	req.Equal(15*time.Second, cfg.SweepInterval)
	req.Equal(10*time.Second, cfg.Inactivity)
	req.Equal(1500*time.Millisecond, cfg.PublishTimeout)
	req.True(cfg.Presence.RemoveInactive)
	req.Equal("memory", cfg.RateLimit.Backend)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte("app:\n  port: 8081\n  env: production\npresence:\n  inactivity_seconds: 30\n  remove_inactive: false\nmongo:\n  uri: mongodb://file:27017\n")
	req.NoError(os.WriteFile(path, yaml, 0o600))

	t.Setenv("APP_APP_PORT", "9090")
	t.Setenv("DATABASE_URL", "mongodb://env:27017/chat")

	cfg, err := Load(path)
	req.NoError(err)
	req.Equal(9090, cfg.App.Port)
	req.Equal("production", cfg.App.Env)
	req.Equal(30*time.Second, cfg.Inactivity)
	req.False(cfg.Presence.RemoveInactive)
	req.Equal("mongodb://env:27017/chat", cfg.Mongo.URI)
}

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-transfers/pkg/config"
	"github.com/goliatone/go-transfers/pkg/telemetry"
)

func TestServeFlagsOverrideConfig(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"TRANSFERS_ADDR": ":7000"})
	require.NoError(t, err)

	(&serveCmd{LogLevel: "debug"}).apply(&cfg)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)

	(&serveCmd{Addr: ":8181", Fixtures: "mock.yaml"}).apply(&cfg)
	assert.Equal(t, ":8181", cfg.Addr)
	assert.Equal(t, "mock.yaml", cfg.Fixtures)
}

func TestLoadFixturesDefaultsToEmbedded(t *testing.T) {
	doc, err := loadFixtures("")
	require.NoError(t, err)
	assert.Equal(t, "embedded", doc.Source)
	assert.NotZero(t, doc.Summary()["users"])
}

func TestBuildAppWiresStores(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"TRANSFERS_JWT_SECRET": "0123456789abcdef0123",
		"TRANSFERS_SESSION_DB": filepath.Join(t.TempDir(), "sessions.db"),
	})
	require.NoError(t, err)

	app, closeApp, err := buildApp(context.Background(), cfg, telemetry.Multi{}, zap.NewNop())
	require.NoError(t, err)
	defer closeApp()

	client, err := app.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, client.Token)
	assert.False(t, client.State().IsAuthenticated)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"climbing-holds/internal/domain/entity"
	"climbing-holds/internal/infrastructure/vision"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, ":8000", cfg.Server.Port)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	require.Equal(t, "Images", cfg.Storage.ImagesDir)
	require.Equal(t, 1, cfg.Vision.Workers)

	params, err := cfg.VisionParams()
	require.NoError(t, err)
	require.Equal(t, vision.DefaultParams().MinHoldArea, params.MinHoldArea)
	require.Equal(t, vision.ShapeContour, params.Shape)

	strategy, err := cfg.BackgroundStrategy()
	require.NoError(t, err)
	require.Equal(t, entity.IsolateGrabCut, strategy)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: ":9000"
vision:
  min_hold_area: 250
  shape: box
  background_strategy: holds
redis:
  enabled: true
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))
	t.Setenv("SERVER_PORT", ":9100")
	t.Setenv("TELEGRAM_TOKEN", "secret")

	cfg, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, ":9100", cfg.Server.Port)
	require.Equal(t, "secret", cfg.Telegram.Token)
	require.True(t, cfg.Redis.Enabled)

	params, err := cfg.VisionParams()
	require.NoError(t, err)
	require.Equal(t, 250.0, params.MinHoldArea)
	require.Equal(t, vision.ShapeBox, params.Shape)

	strategy, err := cfg.BackgroundStrategy()
	require.NoError(t, err)
	require.Equal(t, entity.IsolateHolds, strategy)
}

func TestLoad_InvalidVision(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("vision:\n  shape: star\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestVisionParams_CannyOrder(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	cfg.Vision.CannyLow = 200
	_, err = cfg.VisionParams()
	require.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "konekt", cfg.DBName)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://konekt.example, https://staging.konekt.example ,")
	t.Setenv("SWEEP_INTERVAL", "30s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, []string{"https://konekt.example", "https://staging.konekt.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
}

func TestLoadBadDurationFallsBack(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "soon")
	assert.Equal(t, time.Minute, Load().SweepInterval)
}

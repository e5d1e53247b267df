package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "captacao_inicial", cfg.TemplateName)
	assert.Equal(t, "pt_BR", cfg.TemplateLang)
	assert.Equal(t, 8*time.Hour, cfg.MonitorWindow)
	assert.Equal(t, 20*time.Second, cfg.SendDelayMin)
	assert.Equal(t, 40*time.Second, cfg.SendDelayMax)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Empty(t, cfg.MetaToken)
	assert.Empty(t, cfg.AdminPhone)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("META_TOKEN", "token-123")
	t.Setenv("PHONE_NUMBER_ID", "5550001")
	t.Setenv("ADMIN_LOG_NUMBER", "5561988887777")
	t.Setenv("MONITOR_WINDOW_HOURS", "2")
	t.Setenv("SEND_DELAY_MIN", "5s")
	t.Setenv("SEND_DELAY_MAX", "10s")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "token-123", cfg.MetaToken)
	assert.Equal(t, "5550001", cfg.PhoneNumberID)
	assert.Equal(t, "5561988887777", cfg.AdminPhone)
	assert.Equal(t, 2*time.Hour, cfg.MonitorWindow)
	assert.Equal(t, 5*time.Second, cfg.SendDelayMin)
	assert.Equal(t, 10*time.Second, cfg.SendDelayMax)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MONITOR_WINDOW_HOURS", "muitas")
	t.Setenv("SEND_DELAY_MIN", "logo")

	cfg := Load()

	assert.Equal(t, 8*time.Hour, cfg.MonitorWindow)
	assert.Equal(t, 20*time.Second, cfg.SendDelayMin)
}

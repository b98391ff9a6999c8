package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/greekbot.db", cfg.SQLitePath)
	assert.Equal(t, 2, cfg.DailyTarget)
	assert.Equal(t, 9, cfg.ActiveHoursStart)
	assert.Equal(t, 21, cfg.ActiveHoursEnd)
	assert.Equal(t, "Europe/London", cfg.Timezone)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DAILY_TARGET", "4")
	t.Setenv("ACTIVE_HOURS_START", "7")
	t.Setenv("TIMEZONE", "Europe/Athens")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.DailyTarget)
	assert.Equal(t, 7, cfg.ActiveHoursStart)
	assert.Equal(t, "Europe/Athens", cfg.Location().String())
}

func TestLoadRejectsBadHours(t *testing.T) {
	t.Setenv("ACTIVE_HOURS_START", "22")
	t.Setenv("ACTIVE_HOURS_END", "9")

	_, err := Load()
	assert.Error(t, err)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	assert.Equal(t, "UTC", cfg.Location().String())
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validConfig = `
username: u
password: p
plant_id: "123"
start_date: "2023-01-01"
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "u", cfg.Username)
	assert.Equal(t, "123", cfg.PlantID)

	start, err := cfg.GetStartDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	interval, err := cfg.GetPollInterval()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, interval)

	timeout, err := cfg.GetHTTPTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	assert.Equal(t, "data/solar_data.sqlite", cfg.GetDatabasePath())
	assert.Equal(t, "growatt", cfg.MQTT.GetTopicPrefix())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"no password", "username: u\nplant_id: \"123\"\nstart_date: \"2023-01-01\"\n"},
		{"no plant id", "username: u\npassword: p\nstart_date: \"2023-01-01\"\n"},
		{"no start date", "username: u\npassword: p\nplant_id: \"123\"\n"},
		{"bad start date", "username: u\npassword: p\nplant_id: \"123\"\nstart_date: \"01/01/2023\"\n"},
		{"bad poll interval", validConfig + "poll_interval: soon\n"},
		{"influx enabled without token", validConfig + "influx:\n  enabled: true\n  url: http://localhost:8086\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.config))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GROWATT_PASSWORD", "from-env")
	t.Setenv("INFLUXDB_TOKEN", "tok")

	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Password)
	assert.Equal(t, "tok", cfg.Influx.Token)
}

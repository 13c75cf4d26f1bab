package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/neelabalan/growatt-dashboard/internal/growatt"
)

// Config holds the application configuration. Username, password,
// plant_id and start_date are required; everything else has a default.
type Config struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	PlantID   string `yaml:"plant_id"`
	StartDate string `yaml:"start_date"` // YYYY-MM-DD

	APIURL       string `yaml:"api_url,omitempty"`
	HTTPTimeout  string `yaml:"http_timeout,omitempty"`
	PollInterval string `yaml:"poll_interval,omitempty"`

	Database DatabaseConfig `yaml:"database,omitempty"`
	Influx   InfluxConfig   `yaml:"influx,omitempty"`
	MQTT     MQTTConfig     `yaml:"mqtt,omitempty"`
}

// DatabaseConfig holds the local SQLite store settings
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// InfluxConfig holds the optional InfluxDB sink settings
type InfluxConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

// MQTTConfig holds the optional MQTT publisher settings
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// Load reads the config file and applies environment overrides. A .env
// file in the working directory is honored for the override variables.
func Load(configPath string) (*Config, error) {
	// a missing .env is fine, the variables may come from the real
	// environment or the config file
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GROWATT_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("GROWATT_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("INFLUXDB_TOKEN"); v != "" {
		c.Influx.Token = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
}

// Validate checks the required fields. Any failure here is fatal at
// startup.
func (c *Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	if c.PlantID == "" {
		return fmt.Errorf("plant_id is required")
	}
	if c.StartDate == "" {
		return fmt.Errorf("start_date is required")
	}
	if _, err := c.GetStartDate(); err != nil {
		return err
	}
	if _, err := c.GetHTTPTimeout(); err != nil {
		return err
	}
	if _, err := c.GetPollInterval(); err != nil {
		return err
	}
	if c.Influx.Enabled {
		if c.Influx.URL == "" || c.Influx.Token == "" || c.Influx.Org == "" || c.Influx.Bucket == "" {
			return fmt.Errorf("influx url, token, org and bucket are required when influx is enabled")
		}
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt broker is required when mqtt is enabled")
	}
	return nil
}

// GetStartDate parses the configured backfill start date
func (c *Config) GetStartDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing start_date: %w", err)
	}
	return t, nil
}

// GetAPIURL returns the Growatt API base URL with a default
func (c *Config) GetAPIURL() string {
	if c.APIURL == "" {
		return growatt.DefaultBaseURL
	}
	return c.APIURL
}

// GetHTTPTimeout returns the API request timeout with a default of 30s
func (c *Config) GetHTTPTimeout() (time.Duration, error) {
	if c.HTTPTimeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("parsing http_timeout: %w", err)
	}
	return d, nil
}

// GetPollInterval returns the collection interval with a default of 12h
func (c *Config) GetPollInterval() (time.Duration, error) {
	if c.PollInterval == "" {
		return 12 * time.Hour, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("parsing poll_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll_interval must be positive")
	}
	return d, nil
}

// GetDatabasePath returns the SQLite file path with the default the
// provisioned dashboard expects
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "data/solar_data.sqlite"
	}
	return c.Database.Path
}

// GetTopicPrefix returns the MQTT topic prefix with a default
func (c *MQTTConfig) GetTopicPrefix() string {
	if c.TopicPrefix == "" {
		return "growatt"
	}
	return c.TopicPrefix
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

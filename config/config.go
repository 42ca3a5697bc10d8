package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Log        LogConfig        `yaml:"log"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size   int `yaml:"size"`
	Buffer int `yaml:"buffer"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// MQTTConfig holds the broker settings for the MQTT change publisher.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// MonitorConfig holds the settings of the availability check loop.
type MonitorConfig struct {
	Enabled               bool          `yaml:"enabled"`
	CheckSchedule         string        `yaml:"check_schedule"`
	AttemptTimeoutSeconds int           `yaml:"attempt_timeout_seconds"`
	AttemptTimeout        time.Duration `yaml:"-"`
	RetryBackoffMillis    int           `yaml:"retry_backoff_ms"`
	RetryBackoff          time.Duration `yaml:"-"`
	PingPrivileged        bool          `yaml:"ping_privileged"`
}

// ScheduleConfig holds the settings of the outage schedule cache.
type ScheduleConfig struct {
	Enabled                bool          `yaml:"enabled"`
	URLTemplate            string        `yaml:"url_template"`
	Groups                 []int         `yaml:"groups"`
	RefreshIntervalMinutes int           `yaml:"refresh_interval_minutes"`
	RefreshInterval        time.Duration `yaml:"-"`
	RequestDelayMillis     int           `yaml:"request_delay_ms"`
	RequestDelay           time.Duration `yaml:"-"`
	StaleAfterHours        int           `yaml:"stale_after_hours"`
	StaleAfter             time.Duration `yaml:"-"`
	MarginMinutes          int           `yaml:"margin_minutes"`
	Margin                 time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableTimescale        bool   `yaml:"enable_timescale"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the configuration from the given path. Variables from a .env file
// in the working directory are loaded first, and ${VAR} references in the file
// are expanded from the environment.
func Load(path string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Monitor.CheckSchedule == "" {
		cfg.Monitor.CheckSchedule = "@every 1m"
	}
	if cfg.Monitor.AttemptTimeoutSeconds <= 0 {
		cfg.Monitor.AttemptTimeoutSeconds = 5
	}
	cfg.Monitor.AttemptTimeout = time.Duration(cfg.Monitor.AttemptTimeoutSeconds) * time.Second
	if cfg.Monitor.RetryBackoffMillis <= 0 {
		cfg.Monitor.RetryBackoffMillis = 1000
	}
	cfg.Monitor.RetryBackoff = time.Duration(cfg.Monitor.RetryBackoffMillis) * time.Millisecond

	if cfg.Schedule.URLTemplate == "" {
		cfg.Schedule.URLTemplate = "https://kyiv.electricstatus.click/group/%d/week"
	}
	if len(cfg.Schedule.Groups) == 0 {
		cfg.Schedule.Groups = []int{1, 2, 3, 4, 5, 6}
	}
	if cfg.Schedule.RefreshIntervalMinutes <= 0 {
		cfg.Schedule.RefreshIntervalMinutes = 10
	}
	cfg.Schedule.RefreshInterval = time.Duration(cfg.Schedule.RefreshIntervalMinutes) * time.Minute
	if cfg.Schedule.RequestDelayMillis <= 0 {
		cfg.Schedule.RequestDelayMillis = 100
	}
	cfg.Schedule.RequestDelay = time.Duration(cfg.Schedule.RequestDelayMillis) * time.Millisecond
	if cfg.Schedule.StaleAfterHours <= 0 {
		cfg.Schedule.StaleAfterHours = 4
	}
	cfg.Schedule.StaleAfter = time.Duration(cfg.Schedule.StaleAfterHours) * time.Hour
	if cfg.Schedule.MarginMinutes <= 0 {
		cfg.Schedule.MarginMinutes = 29
	}
	cfg.Schedule.Margin = time.Duration(cfg.Schedule.MarginMinutes) * time.Minute

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "power-status-backend"
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "power"
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.Buffer <= 0 {
		cfg.WorkerPool.Buffer = 64
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

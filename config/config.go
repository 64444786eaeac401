package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"tourney/database"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `envconfig:"DISCORD_TOKEN"`
	GuildID      string `envconfig:"GUILD_ID"` // Guild where slash commands are registered, empty for global

	// Database configuration
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseName string `envconfig:"DATABASE_NAME"`

	// NATS configuration
	NATSServers string `envconfig:"NATS_SERVERS" default:"nats://nats:4222"` // comma-separated, empty disables NATS

	// Tournament configuration
	AdminDiscordIDs []int64 `envconfig:"ADMIN_DISCORD_IDS"` // Users allowed to manage tournaments besides guild admins

	// Betting configuration
	DefaultWalletStake float64 `envconfig:"DEFAULT_WALLET_STAKE" default:"1000"`
	MinBetStake        float64 `envconfig:"MIN_BET_STAKE" default:"1"`
	OddsPolicy         string  `envconfig:"ODDS_POLICY" default:"even"` // "even" or "history"

	// Settlement retry sweep, cron syntax
	SettlementSchedule string `envconfig:"SETTLEMENT_SCHEDULE" default:"@every 5m"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // "development", "production" or "test"
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// NATSServerList returns the configured NATS servers, empty when NATS is disabled
func (c *Config) NATSServerList() []string {
	var servers []string
	for _, s := range strings.Split(c.NATSServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}

// IsAdmin reports whether the user is a configured tournament admin
func (c *Config) IsAdmin(discordID int64) bool {
	for _, id := range c.AdminDiscordIDs {
		if id == discordID {
			return true
		}
	}
	return false
}

// load loads configuration from an optional .env file and the environment
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, reading environment variables directly")
	}

	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks required settings. Test environments skip the connection checks.
func (c *Config) Validate() error {
	if c.Environment != "test" {
		if c.DiscordToken == "" {
			return fmt.Errorf("DISCORD_TOKEN is required")
		}
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	if c.DefaultWalletStake <= 0 {
		return fmt.Errorf("DEFAULT_WALLET_STAKE must be positive")
	}
	if c.MinBetStake <= 0 {
		return fmt.Errorf("MIN_BET_STAKE must be positive")
	}
	switch c.OddsPolicy {
	case "even", "history":
	default:
		return fmt.Errorf("unknown ODDS_POLICY %q", c.OddsPolicy)
	}
	return nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:        "test",
		DefaultWalletStake: 1000,
		MinBetStake:        1,
		OddsPolicy:         "even",
		SettlementSchedule: "@every 5m",
		LogLevel:           "debug",
		AdminDiscordIDs:    []int64{999999},
	}
}

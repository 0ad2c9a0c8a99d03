package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Dispatch DispatchConfig
	Mail     MailConfig
	Scraper  ScraperConfig
}

type ServerConfig struct {
	HTTPPort    int           `mapstructure:"http_port"`
	MetricsPort int           `mapstructure:"metrics_port"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Password    string   `mapstructure:"password"`
	DB          int      `mapstructure:"db"`
	PoolSize    int      `mapstructure:"pool_size"`
	ClusterMode bool     `mapstructure:"cluster_mode"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// DispatchConfig controls the orchestrator pass. CronSecret is the shared
// secret the external scheduler presents; it is compared in constant time
// and must never appear in logs.
type DispatchConfig struct {
	CronSecret   string        `mapstructure:"cron_secret"`
	EmailLimit   int           `mapstructure:"email_limit"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
}

type MailConfig struct {
	ProviderURL  string        `mapstructure:"provider_url"`
	APIKey       string        `mapstructure:"api_key"`
	FromAddress  string        `mapstructure:"from_address"`
	TrackingBase string        `mapstructure:"tracking_base"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type ScraperConfig struct {
	APIToken       string        `mapstructure:"api_token"`
	BaseURL        string        `mapstructure:"base_url"`
	MapsActor      string        `mapstructure:"maps_actor"`
	LinkedInActor  string        `mapstructure:"linkedin_actor"`
	ValidatorActor string        `mapstructure:"validator_actor"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether the scrape phase runs at all. Without a provider
// token the whole phase is skipped, which is not an error.
func (c *ScraperConfig) Enabled() bool {
	return c.APIToken != ""
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/leadforge/")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("LEADFORGE")
	viper.AutomaticEnv()

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.metrics_port", 9091)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("redis.addresses", []string{"localhost:6379"})
	viper.SetDefault("redis.pool_size", 100)
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("dispatch.email_limit", 50)
	viper.SetDefault("dispatch.poll_interval", "1m")
	viper.SetDefault("dispatch.lock_ttl", "5m")
	viper.SetDefault("mail.timeout", "30s")
	viper.SetDefault("scraper.base_url", "https://api.apify.com/v2")
	viper.SetDefault("scraper.maps_actor", "compass~crawler-google-places")
	viper.SetDefault("scraper.linkedin_actor", "curious_coder~linkedin-people-search-scraper")
	viper.SetDefault("scraper.validator_actor", "zenvanriel~email-validator")
	viper.SetDefault("scraper.timeout", "30s")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

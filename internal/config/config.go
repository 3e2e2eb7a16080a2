package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	// EncryptionKey seals stored values at rest. Empty disables encryption.
	EncryptionKey string `mapstructure:"encryption_key"`
	// PasscodeHash is a bcrypt hash (see `earnings-ledger hash-passcode`).
	// Empty leaves the API unauthenticated, which is the local default.
	PasscodeHash string `mapstructure:"passcode_hash"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console / json
}

// EarningsConfig drives the reconciliation engine.
type EarningsConfig struct {
	DailyGoal      string `mapstructure:"daily_goal"`
	LeftoverPolicy string `mapstructure:"leftover_policy"` // drop / savings
	Timezone       string `mapstructure:"timezone"`
}

type AppSubConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
	Earnings EarningsConfig `mapstructure:"earnings"`
	App      AppSubConfig   `mapstructure:"app"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "data/earnings.db")
	v.SetDefault("jwt.issuer", "earnings-ledger")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("earnings.daily_goal", "28000")
	v.SetDefault("earnings.leftover_policy", "drop")
	v.SetDefault("earnings.timezone", "Local")
	v.SetDefault("app.page_size", 20)
}

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it looks for "config.yaml" in the current working directory
// and falls back to defaults when none exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. EARN_SERVER_PORT=9000
	v.SetEnvPrefix("EARN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	switch c.Earnings.LeftoverPolicy {
	case "drop", "savings":
	default:
		return fmt.Errorf("earnings.leftover_policy must be drop or savings, got %q", c.Earnings.LeftoverPolicy)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves earnings.timezone; "Local" and "" map to time.Local.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Earnings.Timezone
	if tz == "" || tz == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("earnings.timezone: %w", err)
	}
	return loc, nil
}

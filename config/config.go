package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Player   PlayerConfig   `mapstructure:"player"`
	Dealer   DealerConfig   `mapstructure:"dealer"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress string `mapstructure:"http_address"`
	RPCAddress  string `mapstructure:"rpc_address"`
}

type PlayerConfig struct {
	InitialBalance int64  `mapstructure:"initial_balance"`
	HostURL        string `mapstructure:"host_url"`
}

type DealerConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Retries      int           `mapstructure:"retries"`
	Backoff      time.Duration `mapstructure:"backoff"`
	NotifyOnJoin bool          `mapstructure:"notify_on_join"`
}

type DatabaseConfig struct {
	// Driver 可选 memory、gorm、postgres
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8001")
	v.SetDefault("server.rpc_address", "")
	v.SetDefault("player.initial_balance", 100)
	v.SetDefault("player.host_url", "http://127.0.0.1:8001")
	v.SetDefault("dealer.url", "http://127.0.0.1:8000")
	v.SetDefault("dealer.timeout", 2*time.Second)
	v.SetDefault("dealer.retries", 2)
	v.SetDefault("dealer.backoff", 200*time.Millisecond)
	v.SetDefault("dealer.notify_on_join", true)
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.postgres.host", "127.0.0.1")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "teenpatti")
	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from path. Every key has a default and can be
// overridden by a PLAYER_ prefixed environment variable, e.g. PLAYER_DEALER_URL.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("player")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Player.InitialBalance < 0 {
		return errors.New("player.initial_balance must not be negative")
	}
	if c.Dealer.Retries < 0 {
		return errors.New("dealer.retries must not be negative")
	}
	switch c.Database.Driver {
	case "memory", "gorm", "postgres":
	default:
		return errors.New("database.driver must be one of memory, gorm, postgres")
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jason-s-yu/monopoly/internal/models"
)

type Config struct {
	LogLevel       string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort       string `yaml:"http-port" env:"PORT" env-default:"8080"`
	AllowedOrigins string `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-default:"*"`

	Game      Game      `yaml:"game"`
	Redis     Redis     `yaml:"redis"`
	Store     Store     `yaml:"store"`
	Session   Session   `yaml:"session"`
	Historian Historian `yaml:"historian"`
}

type Game struct {
	BoardsDir       string        `yaml:"boards-dir" env:"BOARDS_DIR" env-default:"./boards"`
	DefaultBoard    string        `yaml:"default-board" env:"DEFAULT_BOARD" env-default:"classic"`
	DiceSides       int           `yaml:"dice-sides" env:"DICE_SIDES" env-default:"6"`
	StartingMoney   int           `yaml:"starting-money" env:"STARTING_MONEY" env-default:"1500"`
	AuctionDuration time.Duration `yaml:"auction-duration" env:"AUCTION_DURATION" env-default:"10s"`
}

// Redis is disabled when Addr is empty.
type Redis struct {
	Addr      string `yaml:"addr" env:"REDIS_ADDR"`
	DB        int    `yaml:"db" env:"REDIS_DB"`
	QueueName string `yaml:"queue-name" env:"HISTORIAN_QUEUE_NAME" env-default:"monopoly_actions"`
}

// Store selects the result store: "postgres", "sqlite" or empty for none.
type Store struct {
	Driver      string `yaml:"driver" env:"STORE_DRIVER"`
	DatabaseURL string `yaml:"database-url" env:"DATABASE_URL"`
	SQLitePath  string `yaml:"sqlite-path" env:"SQLITE_PATH"`
}

// Session configures the signed session cookie. TokenExpireTime is a Go
// duration; empty, "0" and "never" mean tokens never expire.
type Session struct {
	TokenExpireTime string `yaml:"token-expire-time" env:"TOKEN_EXPIRE_TIME"`
	PrivateKeyPath  string `yaml:"private-key-path" env:"SESSION_PRIVATE_KEY"`
	PublicKeyPath   string `yaml:"public-key-path" env:"SESSION_PUBLIC_KEY"`
}

type Historian struct {
	BatchSize     int           `yaml:"batch-size" env:"HISTORIAN_BATCH_SIZE" env-default:"20"`
	FlushInterval time.Duration `yaml:"flush-interval" env:"HISTORIAN_FLUSH" env-default:"500ms"`
	Inactivity    time.Duration `yaml:"inactivity" env:"GAME_INACTIVITY_TIMEOUT" env-default:"10m"`
}

// Load reads the YAML file at path when one is given, then applies the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics when the configuration cannot be read.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store driver postgres needs DATABASE_URL")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store driver sqlite needs SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// HouseRules turns the game settings into the defaults for new games.
func (c *Config) HouseRules() models.HouseRules {
	return models.HouseRules{
		StartingMoney:   c.Game.StartingMoney,
		DiceSides:       c.Game.DiceSides,
		AuctionDuration: c.Game.AuctionDuration,
	}.Normalize()
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// HelpText documents every environment variable the config reads.
func HelpText() string {
	text, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return text
}

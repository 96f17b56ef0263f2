package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/tictactoe3d-backend/internal/entity"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var (
	ErrUnknownStorage = errors.New("unknown storage driver")
	ErrEmptyPort      = errors.New("port must not be empty")
	ErrEmptyRedisHost = errors.New("redis host must not be empty")
)

type Config struct {
	LogLevel    string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort  string   `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	StaticDir   string   `yaml:"static-dir" env:"STATIC_DIR" env-default:"./static"`
	CORSOrigins []string `yaml:"cors-origins" env:"CORS_ORIGINS" env-default:"*"`
	Game        Game     `yaml:"game"`
	Storage     Storage  `yaml:"storage"`
	Redis       Redis    `yaml:"redis"`
}

type Game struct {
	GridSize      int           `yaml:"grid-size" env:"GRID_SIZE" env-default:"3"`
	SessionTTL    time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"24h"`
	SessionSecret string        `yaml:"session-secret" env:"SESSION_SECRET"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

// Load reads path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	if that.HTTPPort == "" || that.SocketPort == "" {
		return ErrEmptyPort
	}

	if err := entity.ValidateGridSize(that.Game.GridSize); err != nil {
		return fmt.Errorf("game.grid-size: %w", err)
	}

	switch that.Storage.Driver {
	case StorageMemory:
	case StorageRedis:
		if that.Redis.Host == "" {
			return ErrEmptyRedisHost
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage.Driver)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BrokerMemory = "memory"
	BrokerRedis  = "redis"
	BrokerNATS   = "nats"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Broker     Broker `yaml:"broker"`
	Redis      Redis  `yaml:"redis"`
	NATS       NATS   `yaml:"nats"`
	Game       Game   `yaml:"game"`
}

type Broker struct {
	Driver string `yaml:"driver" env:"BROKER_DRIVER" env-default:"memory"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type NATS struct {
	URL string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type Game struct {
	// AllowUnjoinedMoves lets multiplayer games be played before anyone joined.
	AllowUnjoinedMoves bool `yaml:"allow-unjoined-moves" env:"GAME_ALLOW_UNJOINED_MOVES" env-default:"false"`
}

// Load reads the config file, applies env overrides and defaults, and validates the broker driver.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	switch config.Broker.Driver {
	case BrokerMemory, BrokerRedis, BrokerNATS:
	default:
		return nil, fmt.Errorf("unknown broker driver %q", config.Broker.Driver)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

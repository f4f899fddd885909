package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	StorePath    string `env:"STORE_PATH" envDefault:"./rps-state"`
	DatabaseURL  string `env:"DATABASE_URL"`
	StorageKey   string `env:"STORAGE_KEY" envDefault:"rockPaperScissorsGame"`
	// SharedGame makes every visitor play the same game, like one browser's localStorage.
	SharedGame      bool   `env:"SHARED_GAME" envDefault:"false"`
	SocketIOEnabled bool   `env:"SOCKETIO_ENABLED" envDefault:"true"`
	ExportEnabled   bool   `env:"EXPORT_ENABLED" envDefault:"false"`
	ExportFile      string `env:"EXPORT_FILE" envDefault:"./rps-results.txt"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	// MaxEngines bounds how many players' games are held in memory at once.
	MaxEngines int `env:"MAX_ENGINES" envDefault:"1024"`
}

func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

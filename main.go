package main

import (
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/tictactoe-live/internal"
	"github.com/rocketscienceinc/tictactoe-live/internal/config"
)

const (
	configPathEnv     = "CONFIG_PATH"
	defaultConfigFile = "config.yml"
)

func main() {
	os.Exit(run())
}

// run wires config and logging around the application and returns the process exit code.
func run() int {
	path, err := configPath()
	if err != nil {
		slog.Error("could not resolve config path", "error", err)
		return 1
	}

	conf, err := config.Load(path)
	if err != nil {
		slog.Error("could not load config", "path", path, "error", err)
		return 1
	}

	logger := newLogger(conf.LogLevel)
	logger.Info("config loaded", "path", path, "broker", conf.Broker.Driver)

	if err = app.RunApp(logger, conf); err != nil {
		logger.Error("application stopped", "error", err)
		return 1
	}

	return 0
}

// configPath prefers CONFIG_PATH and falls back to config.yml in the working directory.
func configPath() (string, error) {
	if path := os.Getenv(configPathEnv); path != "" {
		return path, nil
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	return filepath.Join(baseDir, defaultConfigFile), nil
}

// newLogger builds the JSON logger. Unknown levels fall back to info.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

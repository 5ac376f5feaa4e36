package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-live/internal/broker"
	"github.com/rocketscienceinc/tictactoe-live/internal/config"
	"github.com/rocketscienceinc/tictactoe-live/internal/game"
	"github.com/rocketscienceinc/tictactoe-live/internal/repository"
	"github.com/rocketscienceinc/tictactoe-live/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-live/transport/rest"
	"github.com/rocketscienceinc/tictactoe-live/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	msgBroker, err := newBroker(ctx, conf)
	if err != nil {
		return fmt.Errorf("could not start broker: %w", err)
	}

	defer func() {
		if err = msgBroker.Close(); err != nil {
			log.Error("could not close broker", "error", err)
		}
	}()

	log.Info("Broker ready", "driver", conf.Broker.Driver)

	var sessionOpts []game.Option
	if conf.Game.AllowUnjoinedMoves {
		sessionOpts = append(sessionOpts, game.WithPresencePolicy(game.AllowUnjoined))
	}

	gameRepo := repository.NewGameRepository(sessionOpts...)
	gameManager := usecase.NewGameManager(logger, gameRepo, msgBroker)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, gameManager).Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager, msgBroker)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func newBroker(ctx context.Context, conf *config.Config) (broker.Broker, error) {
	switch conf.Broker.Driver {
	case config.BrokerRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, ErrAddrNotFound
		}

		redisBroker, err := broker.NewRedis(ctx, redisAddrString)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis: %w", err)
		}

		return redisBroker, nil
	case config.BrokerNATS:
		natsBroker, err := broker.NewNATS(conf.NATS.URL)
		if err != nil {
			return nil, fmt.Errorf("could not connect to nats: %w", err)
		}

		return natsBroker, nil
	default:
		return broker.NewMemory(), nil
	}
}

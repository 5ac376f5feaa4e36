package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-live/internal/entity"
	"github.com/rocketscienceinc/tictactoe-live/internal/game"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	CreateGame(ctx context.Context, aiMode bool) (*entity.Snapshot, error)
	JoinGame(ctx context.Context, gameID string, side entity.Mark, callerID string) (*entity.Snapshot, game.Role, error)
	MakeTurn(ctx context.Context, gameID string, row, col int, side entity.Mark, callerID string) (*entity.Snapshot, error)
	Rematch(ctx context.Context, gameID string, side entity.Mark) (*entity.Snapshot, error)
	GetGame(ctx context.Context, gameID string) (*entity.Snapshot, error)
	DeleteGame(ctx context.Context, gameID string) error
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	mux         *http.ServeMux
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
		mux:         http.NewServeMux(),
	}

	server.mux.HandleFunc("GET /ping", server.pingHandler)
	server.mux.HandleFunc("POST /api/game/new", server.handleNewGame)
	server.mux.HandleFunc("GET /api/game/{id}", server.handleGetGame)
	server.mux.HandleFunc("DELETE /api/game/{id}", server.handleDeleteGame)
	server.mux.HandleFunc("POST /api/game/{id}/join", server.handleJoinGame)
	server.mux.HandleFunc("POST /api/game/{id}/move", server.handleMove)
	server.mux.HandleFunc("POST /api/game/{id}/rematch", server.handleRematch)

	return server
}

func (that *Server) Handler() http.Handler {
	return that.mux
}

// Start serves the REST API until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

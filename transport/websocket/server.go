package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-live/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-live/internal/broker"
	"github.com/rocketscienceinc/tictactoe-live/internal/entity"
	"github.com/rocketscienceinc/tictactoe-live/internal/game"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	JoinGame(ctx context.Context, gameID string, side entity.Mark, callerID string) (*entity.Snapshot, game.Role, error)
	MakeTurn(ctx context.Context, gameID string, row, col int, side entity.Mark, callerID string) (*entity.Snapshot, error)
	Rematch(ctx context.Context, gameID string, side entity.Mark) (*entity.Snapshot, error)
	GetGame(ctx context.Context, gameID string) (*entity.Snapshot, error)
	SendChat(ctx context.Context, gameID, player, text string) (*entity.ChatMessage, error)
}

type subscriber interface {
	Subscribe(ctx context.Context, topic string) (*broker.Subscription, error)
}

type handlerFunc func(ctx context.Context, client *Client, gameID string, msg *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	subscriber  subscriber
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase, subscriber subscriber) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		subscriber:  subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionJoin] = server.handleJoin
	server.handlers[actionTurn] = server.handleTurn
	server.handlers[actionRematch] = server.handleRematch
	server.handlers[actionChat] = server.handleChat
	server.handlers[actionState] = server.handleState

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{id}", that.serveWS)

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
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

// serveWS upgrades the connection and keeps the client attached to one game
// until either side goes away.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	log := that.logger.With("method", "serveWS", "gameID", gameID)

	if _, err := that.gameUseCase.GetGame(r.Context(), gameID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}

		log.Error("failed to get game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := newClient(log, conn)

	if err = that.attach(ctx, client, gameID); err != nil {
		log.Error("failed to subscribe client", "error", err)
		_ = conn.Close()
		return
	}

	go client.writeLoop(ctx)

	log.Info("WebSocket connection established")

	client.readLoop(func(msg *Message) {
		that.handleMessage(ctx, client, gameID, msg)
	})

	log.Info("WebSocket connection closed")
}

// attach relays the game's snapshot and chat topics to the client.
func (that *Server) attach(ctx context.Context, client *Client, gameID string) error {
	topics := map[string]string{
		broker.GameTopic(gameID): actionState,
		broker.ChatTopic(gameID): actionChat,
	}

	for topic, action := range topics {
		sub, err := that.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}

		go func() {
			for payload := range sub.C {
				client.Send(ctx, Message{Action: action, Payload: payload})
			}
		}()
	}

	return nil
}

func (that *Server) handleMessage(ctx context.Context, client *Client, gameID string, msg *Message) {
	log := that.logger.With("method", "handleMessage", "gameID", gameID, "action", msg.Action)

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Warn("unknown action")
		that.sendError(ctx, client, msg.Action, "unknown action", nil)
		return
	}

	if err := handler(ctx, client, gameID, msg); err != nil {
		log.Error("error processing message", "error", err)
	}
}

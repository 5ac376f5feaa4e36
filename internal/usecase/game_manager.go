package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-live/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-live/internal/broker"
	"github.com/rocketscienceinc/tictactoe-live/internal/entity"
	"github.com/rocketscienceinc/tictactoe-live/internal/game"
)

const invalidMoveMessage = "Invalid move"

type gameRepo interface {
	Create(id string, aiMode bool) (*game.Session, error)
	GetByID(id string) (*game.Session, error)
	DeleteByID(id string)
	Count() int
}

type publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// GameManager is the entry point for transports. It resolves sessions, runs
// one operation on them and publishes the resulting snapshot to viewers.
type GameManager struct {
	logger    *slog.Logger
	gameRepo  gameRepo
	publisher publisher

	newID func() string
	now   func() time.Time
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, publisher publisher) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo:  gameRepo,
		publisher: publisher,

		newID: uuid.NewString,
		now:   time.Now,
	}
}

func (that *GameManager) CreateGame(_ context.Context, aiMode bool) (*entity.Snapshot, error) {
	log := that.logger.With("method", "CreateGame")

	session, err := that.gameRepo.Create(that.newID(), aiMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	snapshot := session.Snapshot()

	log.Info("game created", "gameID", snapshot.ID, "aiMode", aiMode, "liveGames", that.gameRepo.Count())

	return &snapshot, nil
}

func (that *GameManager) JoinGame(ctx context.Context, gameID string, side entity.Mark, callerID string) (*entity.Snapshot, game.Role, error) {
	log := that.logger.With("method", "JoinGame", "gameID", gameID, "callerID", callerID, "side", side)

	session, err := that.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, game.RoleSpectator, fmt.Errorf("failed to get game: %w", err)
	}

	role := session.Join(callerID, side)
	snapshot := session.Snapshot()

	log.Info("caller joined game", "role", role)

	that.publishSnapshot(ctx, &snapshot)

	return &snapshot, role, nil
}

// MakeTurn plays a move. A rejected move returns the unchanged snapshot tagged
// with an error together with apperror.ErrInvalidMove.
func (that *GameManager) MakeTurn(ctx context.Context, gameID string, row, col int, side entity.Mark, callerID string) (*entity.Snapshot, error) {
	log := that.logger.With("method", "MakeTurn", "gameID", gameID, "callerID", callerID, "side", side)

	session, err := that.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if !session.Move(row, col, side, callerID) {
		snapshot := session.Snapshot()
		snapshot.Error = invalidMoveMessage

		log.Info("move rejected", "row", row, "col", col)

		return &snapshot, fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidMove, row, col)
	}

	snapshot := session.Snapshot()

	log.Info("move accepted", "row", row, "col", col, "status", snapshot.Status)

	that.publishSnapshot(ctx, &snapshot)

	return &snapshot, nil
}

func (that *GameManager) Rematch(ctx context.Context, gameID string, side entity.Mark) (*entity.Snapshot, error) {
	log := that.logger.With("method", "Rematch", "gameID", gameID, "side", side)

	session, err := that.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if !side.IsPlayer() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidSide, side)
	}

	session.SetReadyForRematch(side)
	snapshot := session.Snapshot()

	log.Info("side ready for rematch", "startingPlayer", snapshot.StartingPlayer)

	that.publishSnapshot(ctx, &snapshot)

	return &snapshot, nil
}

func (that *GameManager) GetGame(_ context.Context, gameID string) (*entity.Snapshot, error) {
	session, err := that.gameRepo.GetByID(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	snapshot := session.Snapshot()

	return &snapshot, nil
}

func (that *GameManager) DeleteGame(_ context.Context, gameID string) error {
	log := that.logger.With("method", "DeleteGame", "gameID", gameID)

	if _, err := that.gameRepo.GetByID(gameID); err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	that.gameRepo.DeleteByID(gameID)

	log.Info("game deleted", "liveGames", that.gameRepo.Count())

	return nil
}

// SendChat relays a chat line to everyone watching the game. Nothing is stored.
func (that *GameManager) SendChat(ctx context.Context, gameID, player, text string) (*entity.ChatMessage, error) {
	if _, err := that.gameRepo.GetByID(gameID); err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	message := &entity.ChatMessage{
		Player:    player,
		Message:   text,
		Timestamp: that.now().UnixMilli(),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat message: %w", err)
	}

	if err = that.publisher.Publish(ctx, broker.ChatTopic(gameID), payload); err != nil {
		return nil, fmt.Errorf("failed to publish chat message: %w", err)
	}

	return message, nil
}

// publishSnapshot pushes the snapshot to the game's viewers. Failures are only logged.
func (that *GameManager) publishSnapshot(ctx context.Context, snapshot *entity.Snapshot) {
	log := that.logger.With("method", "publishSnapshot", "gameID", snapshot.ID)

	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Error("failed to marshal snapshot", "error", err)
		return
	}

	if err = that.publisher.Publish(ctx, broker.GameTopic(snapshot.ID), payload); err != nil {
		log.Error("failed to publish snapshot", "error", err)
	}
}

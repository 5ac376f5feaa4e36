package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-live/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-live/internal/entity"
	"github.com/rocketscienceinc/tictactoe-live/internal/game"
)

// Successful join, turn and rematch requests need no direct reply: the new
// snapshot reaches every viewer, the sender included, through the game topic.

func (that *Server) handleJoin(ctx context.Context, client *Client, gameID string, msg *Message) error {
	var payload JoinPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(ctx, client, msg.Action, "malformed payload", nil)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	side, ok := entity.ParseMark(payload.Player)
	if !ok || side == entity.EmptyCell {
		that.sendError(ctx, client, msg.Action, apperror.ErrInvalidSide.Error(), nil)
		return nil
	}

	_, role, err := that.gameUseCase.JoinGame(ctx, gameID, side, payload.SessionID)
	if err != nil {
		that.sendFailure(ctx, client, msg.Action, err, nil)
		return fmt.Errorf("failed to join game: %w", err)
	}

	reply, err := newMessage(actionJoin, JoinResult{
		IsSpectator: role != game.RolePlayer,
		Role:        string(role),
	})
	if err != nil {
		return fmt.Errorf("failed to build join reply: %w", err)
	}

	client.Send(ctx, reply)

	return nil
}

func (that *Server) handleTurn(ctx context.Context, client *Client, gameID string, msg *Message) error {
	var payload TurnPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(ctx, client, msg.Action, "malformed payload", nil)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	side, ok := entity.ParseMark(payload.Player)
	if !ok {
		that.sendError(ctx, client, msg.Action, apperror.ErrInvalidSide.Error(), nil)
		return nil
	}

	snapshot, err := that.gameUseCase.MakeTurn(ctx, gameID, payload.Row, payload.Column, side, payload.SessionID)
	if errors.Is(err, apperror.ErrInvalidMove) {
		that.sendFailure(ctx, client, msg.Action, err, snapshot)
		return nil
	}

	if err != nil {
		that.sendFailure(ctx, client, msg.Action, err, nil)
		return fmt.Errorf("failed to make turn: %w", err)
	}

	return nil
}

func (that *Server) handleRematch(ctx context.Context, client *Client, gameID string, msg *Message) error {
	var payload RematchPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(ctx, client, msg.Action, "malformed payload", nil)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	// the usecase rejects anything that is not a player side
	side, ok := entity.ParseMark(payload.Player)
	if !ok {
		side = entity.EmptyCell
	}

	if _, err := that.gameUseCase.Rematch(ctx, gameID, side); err != nil {
		that.sendFailure(ctx, client, msg.Action, err, nil)
		return fmt.Errorf("failed to request rematch: %w", err)
	}

	return nil
}

func (that *Server) handleChat(ctx context.Context, client *Client, gameID string, msg *Message) error {
	var payload ChatPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		that.sendError(ctx, client, msg.Action, "malformed payload", nil)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if _, err := that.gameUseCase.SendChat(ctx, gameID, payload.Player, payload.Message); err != nil {
		that.sendFailure(ctx, client, msg.Action, err, nil)
		return fmt.Errorf("failed to send chat: %w", err)
	}

	return nil
}

// handleState answers only the asking client with the current snapshot.
func (that *Server) handleState(ctx context.Context, client *Client, gameID string, msg *Message) error {
	snapshot, err := that.gameUseCase.GetGame(ctx, gameID)
	if err != nil {
		that.sendFailure(ctx, client, msg.Action, err, nil)
		return fmt.Errorf("failed to get game: %w", err)
	}

	reply, err := newMessage(actionState, snapshot)
	if err != nil {
		return fmt.Errorf("failed to build state reply: %w", err)
	}

	client.Send(ctx, reply)

	return nil
}

func (that *Server) sendFailure(ctx context.Context, client *Client, action string, err error, snapshot *entity.Snapshot) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		that.sendError(ctx, client, action, "Game not found", nil)
	case errors.Is(err, apperror.ErrInvalidMove):
		that.sendError(ctx, client, action, "Invalid move", snapshot)
	case errors.Is(err, apperror.ErrInvalidSide):
		that.sendError(ctx, client, action, err.Error(), nil)
	default:
		that.sendError(ctx, client, action, "Internal Server Error", nil)
	}
}

func (that *Server) sendError(ctx context.Context, client *Client, action, text string, snapshot *entity.Snapshot) {
	reply, err := newMessage(actionError, ErrorPayload{
		Action: action,
		Error:  text,
		Game:   snapshot,
	})
	if err != nil {
		that.logger.Error("failed to build error reply", "error", err)
		return
	}

	client.Send(ctx, reply)
}

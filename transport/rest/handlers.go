package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-live/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-live/internal/entity"
	"github.com/rocketscienceinc/tictactoe-live/internal/game"
)

type JoinRequest struct {
	Player    string `json:"player"`
	SessionID string `json:"sessionId"`
}

type JoinResponse struct {
	*entity.Snapshot
	IsSpectator bool   `json:"isSpectator"`
	Role        string `json:"role"`
}

type MoveRequest struct {
	Row       int    `json:"row"`
	Column    int    `json:"column"`
	Player    string `json:"player"`
	SessionID string `json:"sessionId"`
}

type RematchRequest struct {
	Player string `json:"player"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	aiMode := false
	if raw := r.URL.Query().Get("aiMode"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "aiMode must be a boolean"})
			return
		}
		aiMode = parsed
	}

	snapshot, err := that.gameUseCase.CreateGame(r.Context(), aiMode)
	if err != nil {
		that.writeError(w, "handleNewGame", err, nil)
		return
	}

	that.writeJSON(w, http.StatusCreated, snapshot)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.gameUseCase.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "handleGetGame", err, nil)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.DeleteGame(r.Context(), r.PathValue("id")); err != nil {
		that.writeError(w, "handleDeleteGame", err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if !that.decode(w, r, &req) {
		return
	}

	side, ok := entity.ParseMark(req.Player)
	if !ok || side == entity.EmptyCell {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: apperror.ErrInvalidSide.Error()})
		return
	}

	snapshot, role, err := that.gameUseCase.JoinGame(r.Context(), r.PathValue("id"), side, req.SessionID)
	if err != nil {
		that.writeError(w, "handleJoinGame", err, nil)
		return
	}

	that.writeJSON(w, http.StatusOK, JoinResponse{
		Snapshot:    snapshot,
		IsSpectator: role != game.RolePlayer,
		Role:        string(role),
	})
}

func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !that.decode(w, r, &req) {
		return
	}

	side, ok := entity.ParseMark(req.Player)
	if !ok {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: apperror.ErrInvalidSide.Error()})
		return
	}

	snapshot, err := that.gameUseCase.MakeTurn(r.Context(), r.PathValue("id"), req.Row, req.Column, side, req.SessionID)
	if err != nil {
		that.writeError(w, "handleMove", err, snapshot)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) handleRematch(w http.ResponseWriter, r *http.Request) {
	var req RematchRequest
	if !that.decode(w, r, &req) {
		return
	}

	side, ok := entity.ParseMark(req.Player)
	if !ok {
		side = entity.EmptyCell
	}

	snapshot, err := that.gameUseCase.Rematch(r.Context(), r.PathValue("id"), side)
	if err != nil {
		that.writeError(w, "handleRematch", err, nil)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}

	return true
}

// writeError maps domain errors to status codes. A rejected move carries the
// unchanged snapshot as its body.
func (that *Server) writeError(w http.ResponseWriter, method string, err error, snapshot *entity.Snapshot) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Game not found"})
	case errors.Is(err, apperror.ErrInvalidMove) && snapshot != nil:
		that.writeJSON(w, http.StatusConflict, snapshot)
	case errors.Is(err, apperror.ErrDuplicateSession):
		that.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrInvalidSide):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

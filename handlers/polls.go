// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/pollvault/engine"
	"github.com/danielhkuo/pollvault/middleware"
	"github.com/danielhkuo/pollvault/models"
)

type PollHandler struct {
	engine *engine.Engine
}

func NewPollHandler(eng *engine.Engine) *PollHandler {
	return &PollHandler{engine: eng}
}

// pollID extracts and parses the {id} path segment. Writes the error
// response itself and returns ok=false on failure.
func pollID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return 0, false
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id must be an integer")
		return 0, false
	}
	return id, true
}

// requirePrincipal extracts the validated caller principal, writing a
// 401 when it is missing or malformed.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := middleware.CallerPrincipal(r)
	if p == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "valid X-Principal header required")
		return "", false
	}
	return p, true
}

// writeEngineError maps engine errors to HTTP status codes. Every
// rejection carries its specific reason; callers never see a generic
// failure for a typed condition.
func writeEngineError(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, models.ErrPollNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrNotAuthorized):
		code = http.StatusForbidden
	case errors.Is(err, engine.ErrInvalidRequest), errors.Is(err, models.ErrInvalidOption):
		code = http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrAlreadyVoted),
		errors.Is(err, models.ErrPollClosed),
		errors.Is(err, models.ErrPollExpired),
		errors.Is(err, models.ErrPollFull),
		errors.Is(err, models.ErrNothingToClaim),
		errors.Is(err, models.ErrNoFunding):
		code = http.StatusConflict
	case errors.Is(err, models.ErrLedgerFailure):
		code = http.StatusBadGateway
	default:
		slog.Error("internal error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "internal error")
		return
	}
	middleware.ErrorResponse(w, code, err.Error())
}

// CreatePoll handles POST /polls
// Accepts an optional funding block denominated in the native ledger
// token; self-funded and crowdfunded deposits take the platform fee at
// lock time.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	creator, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Funding != nil && req.Funding.TokenCanister != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "custom token polls use POST /polls/custom-token")
		return
	}

	p, err := h.engine.CreatePoll(r.Context(), creator, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{PollID: p.ID})
}

// CreateCustomTokenPoll handles POST /polls/custom-token
// The caller approves an allowance on the token's own ledger before
// calling; the fund lock pulls against it.
func (h *PollHandler) CreateCustomTokenPoll(w http.ResponseWriter, r *http.Request) {
	creator, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Funding == nil || req.Funding.TokenCanister == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "funding.token_canister is required")
		return
	}

	p, err := h.engine.CreatePoll(r.Context(), creator, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{PollID: p.ID})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}

	p, err := h.engine.GetPoll(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.engine.ListPolls()
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// ListMyPolls handles GET /polls/mine
func (h *PollHandler) ListMyPolls(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	polls, err := h.engine.ListMyPolls(principal)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// lifecycle handles the five creator-only status transitions; each is a
// single guarded status write in the engine.
func (h *PollHandler) lifecycle(w http.ResponseWriter, r *http.Request,
	do func(int64, string) (*models.Poll, error)) {

	id, ok := pollID(w, r)
	if !ok {
		return
	}
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	p, err := do(id, caller)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}

// PausePoll handles POST /polls/{id}/pause
func (h *PollHandler) PausePoll(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.engine.PausePoll)
}

// ResumePoll handles POST /polls/{id}/resume
func (h *PollHandler) ResumePoll(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.engine.ResumePoll)
}

// StartRewardsClaiming handles POST /polls/{id}/start-claims
func (h *PollHandler) StartRewardsClaiming(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.engine.StartRewardsClaiming)
}

// EndRewardsClaiming handles POST /polls/{id}/end-claims
func (h *PollHandler) EndRewardsClaiming(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.engine.EndRewardsClaiming)
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.engine.ClosePoll)
}

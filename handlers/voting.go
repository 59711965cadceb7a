// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/pollvault/engine"
	"github.com/danielhkuo/pollvault/middleware"
	"github.com/danielhkuo/pollvault/models"
)

type VotingHandler struct {
	engine *engine.Engine
}

func NewVotingHandler(eng *engine.Engine) *VotingHandler {
	return &VotingHandler{engine: eng}
}

// Vote handles POST /polls/{id}/vote
// The legacy boolean surface: success true/false, no reason. New
// clients should use VoteV2.
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}
	voter, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	_, err := h.engine.Vote(r.Context(), id, req.OptionID, voter)
	if err != nil {
		// Collapse every rejection into success=false; the detailed
		// reason is only available on the v2 surface.
		middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{Success: false})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{Success: true})
}

// VoteV2 handles POST /polls/{id}/vote_v2
// The structured surface: an accepted vote returns a receipt with the
// reward outcome; a rejected vote returns the precise reason code.
func (h *VotingHandler) VoteV2(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}
	voter, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	receipt, err := h.engine.Vote(r.Context(), id, req.OptionID, voter)
	if err != nil {
		middleware.JSONResponse(w, http.StatusOK, models.VoteV2Response{
			Status: "rejected",
			Reason: models.ReasonCode(err),
		})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteV2Response{
		Status:  "ok",
		Receipt: receipt,
	})
}

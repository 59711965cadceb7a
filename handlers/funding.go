// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/pollvault/engine"
	"github.com/danielhkuo/pollvault/middleware"
	"github.com/danielhkuo/pollvault/models"
)

type FundingHandler struct {
	engine *engine.Engine
}

func NewFundingHandler(eng *engine.Engine) *FundingHandler {
	return &FundingHandler{engine: eng}
}

// Contribute handles POST /polls/{id}/contributions
// Crowdfunded polls only; the contributor approves an allowance on the
// ledger beforehand and the engine pulls against it.
func (h *FundingHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}
	contributor, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req models.ContributeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	funding, net, err := h.engine.Contribute(r.Context(), id, contributor, req.Amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ContributeResponse{
		NetAdded:      net,
		RemainingFund: funding.RemainingFund,
	})
}

// ClaimReward handles POST /polls/{id}/claims
// Converts the caller's escrow entry into a payout while the poll is in
// claims_open.
func (h *FundingHandler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}
	claimer, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	amount, err := h.engine.ClaimReward(r.Context(), id, claimer)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ClaimRewardResponse{Amount: amount})
}

// WithdrawUnusedFunds handles POST /polls/{id}/withdraw
func (h *FundingHandler) WithdrawUnusedFunds(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	withdrawn, escrow, err := h.engine.WithdrawUnusedFunds(r.Context(), id, caller)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.WithdrawResponse{
		WithdrawnAmount: withdrawn,
		EscrowAmount:    escrow,
	})
}

// DonateUnusedFunds handles POST /polls/{id}/donate
// Same accounting as withdraw, but the remainder goes to the platform
// treasury. Irreversible.
func (h *FundingHandler) DonateUnusedFunds(w http.ResponseWriter, r *http.Request) {
	id, ok := pollID(w, r)
	if !ok {
		return
	}
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	donated, escrow, err := h.engine.DonateUnusedFunds(r.Context(), id, caller)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DonateResponse{
		DonatedAmount: donated,
		EscrowAmount:  escrow,
	})
}

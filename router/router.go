// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/pollvault/engine"
	"github.com/danielhkuo/pollvault/handlers"
	"github.com/danielhkuo/pollvault/middleware"
)

func NewRouter(eng *engine.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(eng)
	votingHandler := handlers.NewVotingHandler(eng)
	fundingHandler := handlers.NewFundingHandler(eng)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll creation and retrieval
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("POST /polls/custom-token", middleware.WithLogging(pollHandler.CreateCustomTokenPoll))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/mine", middleware.WithLogging(pollHandler.ListMyPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))

	// Lifecycle transitions (creator only)
	mux.HandleFunc("POST /polls/{id}/pause", middleware.WithLogging(pollHandler.PausePoll))
	mux.HandleFunc("POST /polls/{id}/resume", middleware.WithLogging(pollHandler.ResumePoll))
	mux.HandleFunc("POST /polls/{id}/start-claims", middleware.WithLogging(pollHandler.StartRewardsClaiming))
	mux.HandleFunc("POST /polls/{id}/end-claims", middleware.WithLogging(pollHandler.EndRewardsClaiming))
	mux.HandleFunc("POST /polls/{id}/close", middleware.WithLogging(pollHandler.ClosePoll))

	// Voting
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(votingHandler.Vote))
	mux.HandleFunc("POST /polls/{id}/vote_v2", middleware.WithLogging(votingHandler.VoteV2))

	// Funding and settlement
	mux.HandleFunc("POST /polls/{id}/contributions", middleware.WithLogging(fundingHandler.Contribute))
	mux.HandleFunc("POST /polls/{id}/claims", middleware.WithLogging(fundingHandler.ClaimReward))
	mux.HandleFunc("POST /polls/{id}/withdraw", middleware.WithLogging(fundingHandler.WithdrawUnusedFunds))
	mux.HandleFunc("POST /polls/{id}/donate", middleware.WithLogging(fundingHandler.DonateUnusedFunds))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollvault API v1"))
	})

	return mux
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Poll Vault API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(eng)

# Endpoints

Health:

	GET /health

Poll creation and retrieval:

	POST /polls
	POST /polls/custom-token
	GET  /polls
	GET  /polls/mine
	GET  /polls/{id}

Lifecycle transitions (creator only, via X-Principal):

	POST /polls/{id}/pause
	POST /polls/{id}/resume
	POST /polls/{id}/start-claims
	POST /polls/{id}/end-claims
	POST /polls/{id}/close

Voting:

	POST /polls/{id}/vote
	POST /polls/{id}/vote_v2

Funding and settlement:

	POST /polls/{id}/contributions
	POST /polls/{id}/claims
	POST /polls/{id}/withdraw
	POST /polls/{id}/donate
*/
package router

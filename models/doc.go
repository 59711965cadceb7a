// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, response, and error types for the
poll funding and reward engine.

# Domain Types

  - Poll: a single-question voting instance with options, lifecycle
    status, voter set, and optional funding
  - FundingInfo: monetary configuration and live accounting for a poll
  - Option: voting option with a monotonically increasing counter
  - Amount: arbitrary-precision token amount in smallest units
  - VoteReceipt / RewardOutcome: result of an accepted vote

# Lifecycle

Polls move through five statuses:

	active → {paused, claims_open, closed}
	paused → {active, claims_open, closed}
	claims_open → {claims_ended, closed}
	claims_ended → {closed}
	closed (terminal)

# Errors

All engine rejections use the sentinel errors in errors.go. ReasonCode
maps them to stable codes (ALREADY_VOTED, POLL_FULL, ...) surfaced by the
detailed vote_v2 result.
*/
package models

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

// Engine error taxonomy. Every rejected operation maps to exactly one of
// these; callers get a specific reason, never a generic failure.
var (
	ErrPollNotFound     = errors.New("poll not found")
	ErrNotAuthorized    = errors.New("caller is not the poll creator")
	ErrInvalidState     = errors.New("operation not valid for current poll status")
	ErrAlreadyVoted     = errors.New("principal has already voted on this poll")
	ErrPollClosed       = errors.New("poll is not accepting votes")
	ErrPollExpired      = errors.New("poll voting window has expired")
	ErrPollFull         = errors.New("poll response capacity reached")
	ErrInvalidOption    = errors.New("option does not exist on this poll")
	ErrInsufficientFund = errors.New("reward fund exhausted")
	ErrLedgerFailure    = errors.New("ledger transfer failed")
	ErrNothingToClaim   = errors.New("no pending claim for this principal")
	ErrNoFunding        = errors.New("poll has no funding attached")
)

// ReasonCode returns the stable machine-readable code for an engine
// error, used by the detailed vote/claim results.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrPollNotFound):
		return "POLL_NOT_FOUND"
	case errors.Is(err, ErrNotAuthorized):
		return "NOT_AUTHORIZED"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrAlreadyVoted):
		return "ALREADY_VOTED"
	case errors.Is(err, ErrPollClosed):
		return "POLL_CLOSED"
	case errors.Is(err, ErrPollExpired):
		return "POLL_EXPIRED"
	case errors.Is(err, ErrPollFull):
		return "POLL_FULL"
	case errors.Is(err, ErrInvalidOption):
		return "INVALID_OPTION"
	case errors.Is(err, ErrInsufficientFund):
		return "INSUFFICIENT_FUND"
	case errors.Is(err, ErrLedgerFailure):
		return "LEDGER_FAILURE"
	case errors.Is(err, ErrNothingToClaim):
		return "NOTHING_TO_CLAIM"
	case errors.Is(err, ErrNoFunding):
		return "NO_FUNDING"
	default:
		return "INTERNAL"
	}
}

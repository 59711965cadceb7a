// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"fmt"
	"log/slog"

	"github.com/danielhkuo/pollvault/models"
)

// transitions is the poll status graph. closed is terminal.
var transitions = map[string][]string{
	models.StatusActive:      {models.StatusPaused, models.StatusClaimsOpen, models.StatusClosed},
	models.StatusPaused:      {models.StatusActive, models.StatusClaimsOpen, models.StatusClosed},
	models.StatusClaimsOpen:  {models.StatusClaimsEnded, models.StatusClosed},
	models.StatusClaimsEnded: {models.StatusClosed},
	models.StatusClosed:      {},
}

func transitionAllowed(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// PausePoll suspends voting. Reversible with ResumePoll.
func (e *Engine) PausePoll(pollID int64, caller string) (*models.Poll, error) {
	return e.transition(pollID, caller, models.StatusPaused)
}

// ResumePoll returns a paused poll to active voting.
func (e *Engine) ResumePoll(pollID int64, caller string) (*models.Poll, error) {
	return e.transition(pollID, caller, models.StatusActive)
}

// StartRewardsClaiming opens the claims phase: voting stops and prior
// voters may convert their escrow entries into payouts.
func (e *Engine) StartRewardsClaiming(pollID int64, caller string) (*models.Poll, error) {
	return e.transition(pollID, caller, models.StatusClaimsOpen)
}

// EndRewardsClaiming rejects claims going forward. Unresolved escrow
// entries remain recorded but unpayable until administrative resolution.
func (e *Engine) EndRewardsClaiming(pollID int64, caller string) (*models.Poll, error) {
	return e.transition(pollID, caller, models.StatusClaimsEnded)
}

// ClosePoll moves a poll to its terminal status. No further writes to
// votes, funding, or claims are accepted afterwards.
func (e *Engine) ClosePoll(pollID int64, caller string) (*models.Poll, error) {
	return e.transition(pollID, caller, models.StatusClosed)
}

// transition performs one guarded status write. It never touches vote
// or fund fields; those are owned by the voting and funding paths.
func (e *Engine) transition(pollID int64, caller, target string) (*models.Poll, error) {
	unlock := e.store.Lock(pollID)
	defer unlock()

	p, err := e.store.GetPoll(pollID)
	if err != nil {
		return nil, err
	}

	if p.CreatedBy != caller {
		return nil, models.ErrNotAuthorized
	}

	if !transitionAllowed(p.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidState, p.Status, target)
	}

	if err := e.store.UpdateStatus(pollID, target); err != nil {
		return nil, err
	}

	slog.Info("poll status changed", "poll_id", pollID, "from", p.Status, "to", target)

	p.Status = target
	return p, nil
}

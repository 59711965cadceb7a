// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/pollvault/auth"
	"github.com/danielhkuo/pollvault/models"
)

// Vote validates and records a single vote. Preconditions are checked
// in a fixed order and the first failure wins: poll exists, poll is
// active, voting window open, voter has not voted, option exists,
// capacity not reached.
//
// On success the vote always stands. If the poll is funded, reward
// settlement runs afterwards and its outcome is reported on the
// receipt; a failed reward never rolls back the vote.
func (e *Engine) Vote(ctx context.Context, pollID int64, optionID int, voter string) (*models.VoteReceipt, error) {
	unlock := e.store.Lock(pollID)
	defer unlock()

	p, err := e.store.GetPoll(pollID)
	if err != nil {
		return nil, err
	}

	if p.Status != models.StatusActive {
		return nil, models.ErrPollClosed
	}

	now := e.now()
	if !now.Before(p.ClosesAt) {
		return nil, models.ErrPollExpired
	}

	if p.HasVoted(voter) {
		return nil, models.ErrAlreadyVoted
	}

	if p.OptionByID(optionID) == nil {
		return nil, models.ErrInvalidOption
	}

	if p.Config != nil && p.Config.MaxResponses > 0 && p.TotalVotes >= p.Config.MaxResponses {
		return nil, models.ErrPollFull
	}

	if err := e.store.RecordVote(pollID, optionID, voter, now); err != nil {
		return nil, err
	}

	p.TotalVotes++
	p.Voters[voter] = true
	if opt := p.OptionByID(optionID); opt != nil {
		opt.Votes++
	}

	receipt := &models.VoteReceipt{
		ReceiptID: auth.NewReceiptID(),
		PollID:    pollID,
		OptionID:  optionID,
		VotedAt:   now,
	}

	if p.Funding != nil {
		receipt.Reward = e.settleReward(ctx, p, voter)
	}

	slog.Info("vote recorded",
		"poll_id", pollID,
		"option_id", optionID,
		"total_votes", p.TotalVotes,
	)

	return receipt, nil
}

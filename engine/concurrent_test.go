// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollvault/models"
	"github.com/danielhkuo/pollvault/testutil"
)

// TestConcurrentSameVoter verifies that simultaneous votes from one
// principal yield exactly one accepted vote and one reward.
func TestConcurrentSameVoter(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(100, 10, models.RewardModeImmediate))
	require.NoError(t, err)

	const attempts = 10
	var success, duplicate atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(opt int) {
			defer wg.Done()
			_, err := eng.Vote(ctx, p.ID, opt%2, voter)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, models.ErrAlreadyVoted):
				duplicate.Add(1)
			default:
				t.Errorf("unexpected vote error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
	assert.Equal(t, int32(attempts-1), duplicate.Load())

	stored, err := eng.GetPoll(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.TotalVotes)
	assert.Equal(t, "10", lg.PushedTo(voter).String(), "exactly one reward per accepted vote")
	assert.Equal(t, "80", stored.Funding.RemainingFund.String())
}

// TestConcurrentDistinctVoters verifies that parallel votes from
// different principals all land and the accounting stays consistent.
func TestConcurrentDistinctVoters(t *testing.T) {
	eng, _, _ := testutil.SetupTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(1000, 10, models.RewardModeDeferred))
	require.NoError(t, err)

	const voters = 20
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			principal := fmt.Sprintf("voter-%02d", n)
			if _, err := eng.Vote(ctx, p.ID, n%2, principal); err != nil {
				t.Errorf("vote %s: %v", principal, err)
			}
		}(i)
	}
	wg.Wait()

	stored, err := eng.GetPoll(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(voters), stored.TotalVotes)
	assert.Equal(t, int64(voters), stored.Funding.CurrentResponses)
	assert.Len(t, stored.Funding.PendingClaims, voters)
	assert.Equal(t, "200", stored.Funding.EscrowTotal().String())
	assert.Equal(t, "900", stored.Funding.RemainingFund.String())

	var optionTotal int64
	for _, opt := range stored.Options {
		optionTotal += opt.Votes
	}
	assert.Equal(t, int64(voters), optionTotal)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollvault/models"
	"github.com/danielhkuo/pollvault/testutil"
)

func TestCreateSelfFundedPollAccounting(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	// 100 gross, 10% fee -> 90 net; 10 per response -> 9 responses.
	p, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(100, 10, models.RewardModeImmediate))
	require.NoError(t, err)
	require.NotNil(t, p.Funding)

	f := p.Funding
	assert.Equal(t, "100", f.TotalFund.String())
	assert.Equal(t, "90", f.RemainingFund.String())
	assert.Equal(t, int64(9), f.MaxResponses)
	assert.Equal(t, models.RewardModeImmediate, f.RewardMode)

	require.Len(t, lg.Pulls, 1)
	assert.Equal(t, creator, lg.Pulls[0].Account)
	assert.Equal(t, "100", lg.Pulls[0].Amount.String())
	assert.Equal(t, "10", lg.PushedTo("treasury-account").String())
}

func TestCreatePollDerivesRewardFromCapacity(t *testing.T) {
	eng, _, _ := testutil.SetupTestEngine(t)
	ctx := context.Background()

	req := testutil.FundedPollRequest(1000, 0, models.RewardModeImmediate)
	req.Funding.RewardPerResponse = models.ZeroAmount()
	req.Funding.MaxResponses = 9
	p, err := eng.CreatePoll(ctx, creator, req)
	require.NoError(t, err)

	// 900 net over 9 responses.
	assert.Equal(t, "100", p.Funding.RewardPerResponse.String())
	assert.Equal(t, int64(9), p.Funding.MaxResponses)
}

func TestCreatePollFeePushFailureRefunds(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	lg.FailNextPushes = 1

	_, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(100, 10, models.RewardModeImmediate))
	require.ErrorIs(t, err, models.ErrLedgerFailure)

	// The pull was compensated with a full refund and no poll exists.
	require.Len(t, lg.Pulls, 1)
	assert.Equal(t, "100", lg.PushedTo(creator).String())

	polls, err := eng.ListPolls()
	require.NoError(t, err)
	assert.Empty(t, polls)
}

func TestTreasuryFundedPollFeeExempt(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	req := testutil.FundedPollRequest(100, 10, models.RewardModeImmediate)
	req.Funding.FundingType = models.FundingTreasuryFunded
	p, err := eng.CreatePoll(ctx, creator, req)
	require.NoError(t, err)

	assert.Equal(t, "100", p.Funding.RemainingFund.String())
	assert.Equal(t, int64(10), p.Funding.MaxResponses)

	require.Len(t, lg.Pulls, 1)
	assert.Equal(t, "treasury-account", lg.Pulls[0].Account)
	assert.Equal(t, 0, lg.PushCount("treasury-account"), "treasury funds pay no fee")
}

func TestImmediateRewardPaidPerVote(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(100, 10, models.RewardModeImmediate))
	require.NoError(t, err)

	receipt, err := eng.Vote(ctx, p.ID, 0, voter)
	require.NoError(t, err)
	require.NotNil(t, receipt.Reward)
	assert.Equal(t, models.RewardPaid, receipt.Reward.Status)
	assert.Equal(t, "10", receipt.Reward.Amount.String())
	assert.Equal(t, "10", lg.PushedTo(voter).String())

	stored, err := eng.GetPoll(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "80", stored.Funding.RemainingFund.String())
	assert.Equal(t, int64(1), stored.Funding.CurrentResponses)
}

func TestRewardSkippedWhenFundExhausted(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	// 20 gross -> 18 net -> one full 10-token reward.
	p, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(20, 10, models.RewardModeImmediate))
	require.NoError(t, err)
	require.Equal(t, int64(1), p.Funding.MaxResponses)

	first, err := eng.Vote(ctx, p.ID, 0, "voter-one")
	require.NoError(t, err)
	assert.Equal(t, models.RewardPaid, first.Reward.Status)

	// The vote itself is still accepted once rewards run out.
	second, err := eng.Vote(ctx, p.ID, 1, "voter-two")
	require.NoError(t, err)
	assert.Equal(t, models.RewardSkipped, second.Reward.Status)
	assert.Equal(t, "INSUFFICIENT_FUND", second.Reward.Reason)
	assert.True(t, second.Reward.Amount.IsZero())

	assert.Equal(t, "10", lg.PushedTo("voter-one").String())
	assert.True(t, lg.PushedTo("voter-two").IsZero())

	stored, err := eng.GetPoll(p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.TotalVotes)
}

func TestRewardSkippedWhenCapacityReached(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	// Explicit cap of 1 rewarded response with plenty of fund left.
	req := testutil.FundedPollRequest(100, 10, models.RewardModeImmediate)
	req.Funding.MaxResponses = 1
	p, err := eng.CreatePoll(ctx, creator, req)
	require.NoError(t, err)

	first, err := eng.Vote(ctx, p.ID, 0, "voter-one")
	require.NoError(t, err)
	assert.Equal(t, models.RewardPaid, first.Reward.Status)

	second, err := eng.Vote(ctx, p.ID, 1, "voter-two")
	require.NoError(t, err)
	assert.Equal(t, models.RewardSkipped, second.Reward.Status)
	assert.Equal(t, "POLL_FULL", second.Reward.Reason)

	assert.True(t, lg.PushedTo("voter-two").IsZero())
}

func TestDeferredRewardEscrowAndClaim(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(100, 10, models.RewardModeDeferred))
	require.NoError(t, err)

	receipt, err := eng.Vote(ctx, p.ID, 0, voter)
	require.NoError(t, err)
	assert.Equal(t, models.RewardDeferred, receipt.Reward.Status)
	assert.Equal(t, "10", receipt.Reward.Amount.String())
	assert.True(t, lg.PushedTo(voter).IsZero(), "deferred rewards must not touch the ledger at vote time")

	stored, err := eng.GetPoll(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "90", stored.Funding.RemainingFund.String(), "escrow stays inside the remaining fund")
	assert.Equal(t, "10", stored.Funding.PendingClaims[voter].String())
	assert.Equal(t, "10", stored.Funding.EscrowTotal().String())

	// Claims are rejected until the claims phase opens.
	_, err = eng.ClaimReward(ctx, p.ID, voter)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = eng.StartRewardsClaiming(p.ID, creator)
	require.NoError(t, err)

	amount, err := eng.ClaimReward(ctx, p.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, "10", amount.String())
	assert.Equal(t, "10", lg.PushedTo(voter).String())

	stored, err = eng.GetPoll(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "80", stored.Funding.RemainingFund.String())
	assert.Empty(t, stored.Funding.PendingClaims)

	// At most once.
	_, err = eng.ClaimReward(ctx, p.ID, voter)
	assert.ErrorIs(t, err, models.ErrNothingToClaim)
}

func TestClaimFailedPushKeepsEscrow(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(100, 10, models.RewardModeDeferred))
	require.NoError(t, err)
	_, err = eng.Vote(ctx, p.ID, 0, voter)
	require.NoError(t, err)
	_, err = eng.StartRewardsClaiming(p.ID, creator)
	require.NoError(t, err)

	lg.FailNextPushes = 1
	_, err = eng.ClaimReward(ctx, p.ID, voter)
	require.ErrorIs(t, err, models.ErrLedgerFailure)

	// Entry intact, fund untouched, retry succeeds.
	stored, err := eng.GetPoll(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", stored.Funding.PendingClaims[voter].String())
	assert.Equal(t, "90", stored.Funding.RemainingFund.String())

	amount, err := eng.ClaimReward(ctx, p.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, "10", amount.String())
}

func TestContributeGrowsCrowdfundedPoll(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	req := testutil.FundedPollRequest(0, 10, models.RewardModeImmediate)
	req.Funding.FundingType = models.FundingCrowdfunded
	p, err := eng.CreatePoll(ctx, creator, req)
	require.NoError(t, err)
	assert.True(t, p.Funding.TotalFund.IsZero())
	assert.Equal(t, int64(0), p.Funding.MaxResponses)
	assert.Empty(t, lg.Pulls, "an empty crowdfund pot locks nothing")

	f, net, err := eng.Contribute(ctx, p.ID, "carol-backer", models.NewAmount(100))
	require.NoError(t, err)
	assert.Equal(t, "90", net.String())
	assert.Equal(t, "100", f.TotalFund.String())
	assert.Equal(t, "90", f.RemainingFund.String())
	assert.Equal(t, int64(9), f.MaxResponses)
	assert.Equal(t, "10", lg.PushedTo("treasury-account").String())

	// Repeat contributions aggregate per principal.
	_, _, err = eng.Contribute(ctx, p.ID, "carol-backer", models.NewAmount(50))
	require.NoError(t, err)

	stored, err := eng.GetPoll(p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Funding.Contributors, 1)
	assert.Equal(t, "150", stored.Funding.Contributors[0].Amount.String())
}

func TestContributeRejectedOutsideCrowdfunding(t *testing.T) {
	eng, _, _ := testutil.SetupTestEngine(t)
	ctx := context.Background()

	selfFunded, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(100, 10, models.RewardModeImmediate))
	require.NoError(t, err)
	_, _, err = eng.Contribute(ctx, selfFunded.ID, voter, models.NewAmount(50))
	assert.ErrorIs(t, err, models.ErrInvalidState)

	unfunded, err := eng.CreatePoll(ctx, creator, testutil.UnfundedPollRequest())
	require.NoError(t, err)
	_, _, err = eng.Contribute(ctx, unfunded.ID, voter, models.NewAmount(50))
	assert.ErrorIs(t, err, models.ErrNoFunding)

	closed, err := eng.CreatePoll(ctx, creator, func() models.CreatePollRequest {
		r := testutil.FundedPollRequest(100, 10, models.RewardModeImmediate)
		r.Funding.FundingType = models.FundingCrowdfunded
		return r
	}())
	require.NoError(t, err)
	_, err = eng.ClosePoll(closed.ID, creator)
	require.NoError(t, err)
	_, _, err = eng.Contribute(ctx, closed.ID, voter, models.NewAmount(50))
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestWithdrawUnusedFunds(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(100, 10, models.RewardModeImmediate))
	require.NoError(t, err)

	_, err = eng.Vote(ctx, p.ID, 0, "voter-one")
	require.NoError(t, err)
	_, err = eng.Vote(ctx, p.ID, 1, "voter-two")
	require.NoError(t, err)

	// Not while the poll is running, and only for the creator.
	_, _, err = eng.WithdrawUnusedFunds(ctx, p.ID, creator)
	assert.ErrorIs(t, err, models.ErrInvalidState)
	_, _, err = eng.WithdrawUnusedFunds(ctx, p.ID, "voter-one")
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	_, err = eng.ClosePoll(p.ID, creator)
	require.NoError(t, err)

	withdrawn, escrow, err := eng.WithdrawUnusedFunds(ctx, p.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, "70", withdrawn.String())
	assert.True(t, escrow.IsZero())
	assert.Equal(t, "70", lg.PushedTo(creator).String())

	// Second withdrawal is a zero-amount no-op, not an error.
	withdrawn, _, err = eng.WithdrawUnusedFunds(ctx, p.ID, creator)
	require.NoError(t, err)
	assert.True(t, withdrawn.IsZero())
	assert.Equal(t, "70", lg.PushedTo(creator).String())

	// Donating after withdrawing sees the fund already drained.
	donated, _, err := eng.DonateUnusedFunds(ctx, p.ID, creator)
	require.NoError(t, err)
	assert.True(t, donated.IsZero())
}

func TestDonateRespectsEscrow(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePoll(ctx, creator, testutil.FundedPollRequest(100, 10, models.RewardModeDeferred))
	require.NoError(t, err)
	_, err = eng.Vote(ctx, p.ID, 0, voter)
	require.NoError(t, err)

	_, err = eng.StartRewardsClaiming(p.ID, creator)
	require.NoError(t, err)
	_, err = eng.EndRewardsClaiming(p.ID, creator)
	require.NoError(t, err)

	feeAlready := lg.PushedTo("treasury-account")

	donated, escrow, err := eng.DonateUnusedFunds(ctx, p.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, "80", donated.String(), "unclaimed escrow must stay reserved")
	assert.Equal(t, "10", escrow.String())
	assert.Equal(t, "80", lg.PushedTo("treasury-account").Sub(feeAlready).String())

	stored, err := eng.GetPoll(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", stored.Funding.RemainingFund.String())
	assert.Equal(t, "10", stored.Funding.PendingClaims[voter].String())

	// Claims are no longer payable after claims_ended.
	_, err = eng.ClaimReward(ctx, p.ID, voter)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestCreatePollValidation(t *testing.T) {
	eng, _, _ := testutil.SetupTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.CreatePollRequest)
	}{
		{"empty title", func(r *models.CreatePollRequest) { r.Title = "  " }},
		{"one option", func(r *models.CreatePollRequest) { r.Options = []string{"Only"} }},
		{"blank option", func(r *models.CreatePollRequest) { r.Options = []string{"Yes", " "} }},
		{"closes in past", func(r *models.CreatePollRequest) { r.ClosesAt = r.ClosesAt.AddDate(-1, 0, 0) }},
		{"bad funding type", func(r *models.CreatePollRequest) { r.Funding.FundingType = "sponsored" }},
		{"bad reward mode", func(r *models.CreatePollRequest) { r.Funding.RewardMode = "eventually" }},
		{"no fund", func(r *models.CreatePollRequest) { r.Funding.TotalFund = models.ZeroAmount() }},
		{"no reward or capacity", func(r *models.CreatePollRequest) {
			r.Funding.RewardPerResponse = models.ZeroAmount()
			r.Funding.MaxResponses = 0
		}},
		{"fund below one reward each", func(r *models.CreatePollRequest) {
			r.Funding.RewardPerResponse = models.ZeroAmount()
			r.Funding.MaxResponses = 1000
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.FundedPollRequest(100, 10, models.RewardModeImmediate)
			tc.mutate(&req)
			_, err := eng.CreatePoll(ctx, creator, req)
			assert.Error(t, err)
		})
	}
}

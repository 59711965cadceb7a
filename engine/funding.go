// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/pollvault/models"
)

var ErrInvalidRequest = errors.New("invalid request")

// CreatePoll validates the request, locks funds on the ledger when a
// funding block is present, and persists the new poll. The platform fee
// is applied exactly once, here, at fund-lock time.
func (e *Engine) CreatePoll(ctx context.Context, creator string, req models.CreatePollRequest) (*models.Poll, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if len(req.Options) < 2 {
		return nil, fmt.Errorf("%w: at least 2 options required", ErrInvalidRequest)
	}
	now := e.now()
	if !req.ClosesAt.After(now) {
		return nil, fmt.Errorf("%w: closes_at must be in the future", ErrInvalidRequest)
	}

	p := &models.Poll{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      models.StatusActive,
		CreatedBy:   creator,
		ClosesAt:    req.ClosesAt,
		Voters:      make(map[string]bool),
		Config:      req.Config,
		CreatedAt:   now,
	}
	for i, text := range req.Options {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: option %d is empty", ErrInvalidRequest, i)
		}
		p.Options = append(p.Options, models.Option{ID: i, Text: strings.TrimSpace(text)})
	}

	if req.Funding != nil {
		funding, err := e.buildFunding(req.Funding)
		if err != nil {
			return nil, err
		}

		funder := creator
		if funding.FundingType == models.FundingTreasuryFunded {
			funder = e.cfg.TreasuryAccount
		}
		if funding.FundingType != models.FundingCrowdfunded || !funding.TotalFund.IsZero() {
			fee := funding.TotalFund.Sub(initialNet(funding, e.cfg.FeePercent))
			if err := e.lockFunds(ctx, funder, funding.TotalFund, fee); err != nil {
				return nil, err
			}
			if funding.FundingType == models.FundingCrowdfunded {
				funding.Contributors = []models.Contributor{{Principal: funder, Amount: funding.TotalFund}}
			}
		}

		p.Funding = funding
	}

	id, err := e.store.CreatePoll(p)
	if err != nil {
		return nil, err
	}

	if p.Funding != nil {
		slog.Info("funded poll created",
			"poll_id", id,
			"funding_type", p.Funding.FundingType,
			"total_fund", humanize.BigComma(p.Funding.TotalFund.BigInt()),
			"net_fund", humanize.BigComma(p.Funding.RemainingFund.BigInt()),
			"reward_per_response", p.Funding.RewardPerResponse.String(),
			"max_responses", p.Funding.MaxResponses,
		)
	} else {
		slog.Info("poll created", "poll_id", id, "creator", creator)
	}

	return p, nil
}

// buildFunding turns a funding request into the initial accounting
// state: net fund after the one-time platform fee, and the
// reward/capacity pair with whichever side was omitted derived from the
// net fund.
func (e *Engine) buildFunding(req *models.FundingRequest) (*models.FundingInfo, error) {
	if !models.ValidFundingType(req.FundingType) {
		return nil, fmt.Errorf("%w: unknown funding type %q", ErrInvalidRequest, req.FundingType)
	}

	mode := req.RewardMode
	if mode == "" {
		mode = models.RewardModeImmediate
	}
	if mode != models.RewardModeImmediate && mode != models.RewardModeDeferred {
		return nil, fmt.Errorf("%w: unknown reward mode %q", ErrInvalidRequest, mode)
	}

	f := &models.FundingInfo{
		FundingType:       req.FundingType,
		TokenCanister:     req.TokenCanister,
		TokenSymbol:       req.TokenSymbol,
		TokenDecimals:     req.TokenDecimals,
		RewardMode:        mode,
		TotalFund:         req.TotalFund,
		RewardPerResponse: req.RewardPerResponse,
		MaxResponses:      req.MaxResponses,
		PendingClaims:     make(map[string]models.Amount),
	}
	if f.TokenDecimals == 0 {
		f.TokenDecimals = 8
	}

	// Crowdfunded polls may start with an empty pot.
	if f.TotalFund.IsZero() && f.FundingType != models.FundingCrowdfunded {
		return nil, fmt.Errorf("%w: total_fund is required", ErrInvalidRequest)
	}

	net := initialNet(f, e.cfg.FeePercent)
	f.RemainingFund = net

	switch {
	case !f.RewardPerResponse.IsZero():
		if f.MaxResponses == 0 {
			f.MaxResponses = net.DivAmount(f.RewardPerResponse)
		}
	case f.MaxResponses > 0:
		f.RewardPerResponse = net.DivBy(f.MaxResponses)
		if f.RewardPerResponse.IsZero() {
			return nil, fmt.Errorf("%w: fund too small for %d responses", ErrInvalidRequest, f.MaxResponses)
		}
	default:
		return nil, fmt.Errorf("%w: reward_per_response or max_responses required", ErrInvalidRequest)
	}

	return f, nil
}

// initialNet computes the fund net of the platform fee. Treasury funds
// are fee-exempt.
func initialNet(f *models.FundingInfo, feePercent int64) models.Amount {
	if f.FeeExempt() {
		return f.TotalFund
	}
	return f.TotalFund.MulDiv(100-feePercent, 100)
}

// lockFunds pulls the gross amount from the funder onto the platform
// account, then pushes the fee to the treasury. A failed fee push
// refunds the pull; internal state never reflects a partial lock.
func (e *Engine) lockFunds(ctx context.Context, funder string, total, fee models.Amount) error {
	if err := e.ledger.Pull(ctx, funder, total); err != nil {
		return fmt.Errorf("fund lock: %w", err)
	}

	if fee.IsZero() || funder == e.cfg.TreasuryAccount {
		return nil
	}

	if err := e.ledger.Push(ctx, e.cfg.TreasuryAccount, fee); err != nil {
		slog.Error("fee transfer failed, refunding fund lock", "funder", funder, "error", err)
		if rerr := e.ledger.Push(ctx, funder, total); rerr != nil {
			slog.Error("fund lock refund failed, funds held on platform account",
				"funder", funder,
				"amount", humanize.BigComma(total.BigInt()),
				"error", rerr,
			)
		}
		return fmt.Errorf("fund lock fee: %w", err)
	}

	return nil
}

// Contribute adds funds to a crowdfunded poll. Accepted until the poll
// closes; the fee applies per contribution at acceptance time.
func (e *Engine) Contribute(ctx context.Context, pollID int64, contributor string, amount models.Amount) (*models.FundingInfo, models.Amount, error) {
	if amount.IsZero() {
		return nil, models.Amount{}, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	unlock := e.store.Lock(pollID)
	defer unlock()

	p, err := e.store.GetPoll(pollID)
	if err != nil {
		return nil, models.Amount{}, err
	}
	if p.Funding == nil {
		return nil, models.Amount{}, models.ErrNoFunding
	}
	f := p.Funding
	if f.FundingType != models.FundingCrowdfunded {
		return nil, models.Amount{}, fmt.Errorf("%w: poll is not crowdfunded", models.ErrInvalidState)
	}
	if p.Status == models.StatusClosed {
		return nil, models.Amount{}, fmt.Errorf("%w: poll is closed", models.ErrInvalidState)
	}

	net := amount.MulDiv(100-e.cfg.FeePercent, 100)
	fee := amount.Sub(net)

	if err := e.lockFunds(ctx, contributor, amount, fee); err != nil {
		return nil, models.Amount{}, err
	}

	f.TotalFund = f.TotalFund.Add(amount)
	f.RemainingFund = f.RemainingFund.Add(net)
	if !f.RewardPerResponse.IsZero() {
		f.MaxResponses += net.DivAmount(f.RewardPerResponse)
	}

	if err := checkFunding(f); err != nil {
		return nil, models.Amount{}, err
	}
	if err := e.store.AddContribution(pollID, contributor, amount); err != nil {
		return nil, models.Amount{}, err
	}
	if err := e.store.SaveFunding(pollID, f); err != nil {
		return nil, models.Amount{}, err
	}

	slog.Info("contribution accepted",
		"poll_id", pollID,
		"gross", humanize.BigComma(amount.BigInt()),
		"net", humanize.BigComma(net.BigInt()),
	)

	return f, net, nil
}

// settleReward settles the reward for one accepted vote. Called with
// the poll lock held, immediately after the vote committed. The
// tentative debit only persists once the ledger push has succeeded; a
// failed push leaves the fund exactly as it was (compensation), and the
// vote stands regardless of the outcome here.
func (e *Engine) settleReward(ctx context.Context, p *models.Poll, voter string) *models.RewardOutcome {
	f := p.Funding
	reward := f.RewardPerResponse

	// Escrowed amounts are reserved; a reward may only draw on what is
	// left above them.
	available := f.RemainingFund.Sub(f.EscrowTotal())
	if available.Cmp(reward) < 0 {
		return &models.RewardOutcome{
			Status: models.RewardSkipped,
			Amount: models.ZeroAmount(),
			Reason: models.ReasonCode(models.ErrInsufficientFund),
		}
	}

	if f.CurrentResponses >= f.MaxResponses {
		return &models.RewardOutcome{
			Status: models.RewardSkipped,
			Amount: models.ZeroAmount(),
			Reason: models.ReasonCode(models.ErrPollFull),
		}
	}

	if f.RewardMode == models.RewardModeDeferred {
		prev := f.PendingClaims[voter]
		f.PendingClaims[voter] = prev.Add(reward)
		f.CurrentResponses++

		if err := checkFunding(f); err != nil {
			slog.Error("reward escrow aborted", "poll_id", p.ID, "error", err)
			delete(f.PendingClaims, voter)
			f.CurrentResponses--
			return &models.RewardOutcome{Status: models.RewardFailed, Amount: models.ZeroAmount(), Reason: "INTERNAL"}
		}
		if err := e.store.SetPendingClaim(p.ID, voter, f.PendingClaims[voter]); err != nil {
			slog.Error("failed to persist escrow entry", "poll_id", p.ID, "error", err)
			return &models.RewardOutcome{Status: models.RewardFailed, Amount: models.ZeroAmount(), Reason: "INTERNAL"}
		}
		if err := e.store.SaveFunding(p.ID, f); err != nil {
			slog.Error("failed to persist funding counters", "poll_id", p.ID, "error", err)
			return &models.RewardOutcome{Status: models.RewardFailed, Amount: models.ZeroAmount(), Reason: "INTERNAL"}
		}

		return &models.RewardOutcome{Status: models.RewardDeferred, Amount: reward}
	}

	// Immediate settlement: tentative debit, await the push, commit only
	// on success.
	newRemaining := f.RemainingFund.Sub(reward)

	if err := e.ledger.Push(ctx, voter, reward); err != nil {
		slog.Warn("reward payout failed, fund untouched",
			"poll_id", p.ID,
			"amount", reward.String(),
			"error", err,
		)
		return &models.RewardOutcome{
			Status: models.RewardFailed,
			Amount: models.ZeroAmount(),
			Reason: models.ReasonCode(models.ErrLedgerFailure),
		}
	}

	f.RemainingFund = newRemaining
	f.CurrentResponses++

	if err := checkFunding(f); err != nil {
		// Money already moved; this is a programming error, not a state
		// to hide. Log loudly and keep the books matching the ledger.
		slog.Error("funding invariant violated after payout", "poll_id", p.ID, "error", err)
	}
	if err := e.store.SaveFunding(p.ID, f); err != nil {
		slog.Error("failed to persist funding after payout", "poll_id", p.ID, "error", err)
	}

	slog.Info("reward paid",
		"poll_id", p.ID,
		"amount", humanize.BigComma(reward.BigInt()),
		"remaining_fund", humanize.BigComma(f.RemainingFund.BigInt()),
	)

	return &models.RewardOutcome{Status: models.RewardPaid, Amount: reward}
}

// ClaimReward converts a pending escrow entry into an actual payout.
// At-most-once: the entry is only cleared when the push succeeded, and
// a failed push leaves it fully intact.
func (e *Engine) ClaimReward(ctx context.Context, pollID int64, claimer string) (models.Amount, error) {
	unlock := e.store.Lock(pollID)
	defer unlock()

	p, err := e.store.GetPoll(pollID)
	if err != nil {
		return models.Amount{}, err
	}
	if p.Funding == nil {
		return models.Amount{}, models.ErrNoFunding
	}
	if p.Status != models.StatusClaimsOpen {
		return models.Amount{}, fmt.Errorf("%w: claims are not open", models.ErrInvalidState)
	}

	entry, ok := p.Funding.PendingClaims[claimer]
	if !ok || entry.IsZero() {
		return models.Amount{}, models.ErrNothingToClaim
	}

	if err := e.ledger.Push(ctx, claimer, entry); err != nil {
		return models.Amount{}, fmt.Errorf("claim payout: %w", err)
	}

	newRemaining := p.Funding.RemainingFund.Sub(entry)
	if err := e.store.SettleClaim(pollID, claimer, newRemaining); err != nil {
		slog.Error("claim paid but settlement write failed", "poll_id", pollID, "error", err)
		return models.Amount{}, err
	}

	slog.Info("reward claimed",
		"poll_id", pollID,
		"amount", humanize.BigComma(entry.BigInt()),
	)

	return entry, nil
}

// WithdrawUnusedFunds pays the unreserved remainder of the fund back to
// the creator. Escrowed claims are untouchable and stay claimable.
func (e *Engine) WithdrawUnusedFunds(ctx context.Context, pollID int64, caller string) (withdrawn, escrow models.Amount, err error) {
	return e.settleRemainder(ctx, pollID, caller, caller, "withdrawn")
}

// DonateUnusedFunds pushes the unreserved remainder to the platform
// treasury instead of the creator. Irreversible.
func (e *Engine) DonateUnusedFunds(ctx context.Context, pollID int64, caller string) (donated, escrow models.Amount, err error) {
	return e.settleRemainder(ctx, pollID, caller, e.cfg.TreasuryAccount, "donated")
}

func (e *Engine) settleRemainder(ctx context.Context, pollID int64, caller, recipient, verb string) (models.Amount, models.Amount, error) {
	unlock := e.store.Lock(pollID)
	defer unlock()

	p, err := e.store.GetPoll(pollID)
	if err != nil {
		return models.Amount{}, models.Amount{}, err
	}
	if p.CreatedBy != caller {
		return models.Amount{}, models.Amount{}, models.ErrNotAuthorized
	}
	if p.Status != models.StatusClosed && p.Status != models.StatusClaimsEnded {
		return models.Amount{}, models.Amount{}, fmt.Errorf("%w: poll must be closed or claims_ended", models.ErrInvalidState)
	}
	if p.Funding == nil {
		return models.Amount{}, models.Amount{}, models.ErrNoFunding
	}

	f := p.Funding
	escrow := f.EscrowTotal()
	payable := f.RemainingFund.Sub(escrow)

	if payable.IsZero() {
		return models.ZeroAmount(), escrow, nil
	}

	if err := e.ledger.Push(ctx, recipient, payable); err != nil {
		return models.Amount{}, models.Amount{}, fmt.Errorf("%s payout: %w", verb, err)
	}

	f.RemainingFund = f.RemainingFund.Sub(payable)
	if err := checkFunding(f); err != nil {
		slog.Error("funding invariant violated after remainder payout", "poll_id", pollID, "error", err)
	}
	if err := e.store.SaveFunding(pollID, f); err != nil {
		slog.Error("remainder paid but funding write failed", "poll_id", pollID, "error", err)
		return models.Amount{}, models.Amount{}, err
	}

	slog.Info("unused funds "+verb,
		"poll_id", pollID,
		"amount", humanize.BigComma(payable.BigInt()),
		"escrow", humanize.BigComma(escrow.BigInt()),
	)

	return payable, escrow, nil
}

// checkFunding asserts the accounting invariants that must hold before
// any funding state is committed. A violation is a programming error,
// never a user-facing condition.
func checkFunding(f *models.FundingInfo) error {
	if f.EscrowTotal().Cmp(f.RemainingFund) > 0 {
		return fmt.Errorf("escrow %s exceeds remaining fund %s", f.EscrowTotal(), f.RemainingFund)
	}
	if f.CurrentResponses > f.MaxResponses {
		return fmt.Errorf("current responses %d exceed max %d", f.CurrentResponses, f.MaxResponses)
	}
	return nil
}

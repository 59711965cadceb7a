// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status constants. The transition graph is owned by the engine's
// lifecycle controller; nothing else writes status.
const (
	StatusActive      = "active"
	StatusPaused      = "paused"
	StatusClaimsOpen  = "claims_open"
	StatusClaimsEnded = "claims_ended"
	StatusClosed      = "closed"
)

// Funding type constants
const (
	FundingSelfFunded     = "self_funded"
	FundingCrowdfunded    = "crowdfunded"
	FundingTreasuryFunded = "treasury_funded"
)

// Reward mode constants. Immediate polls pay each qualifying vote at
// vote time; deferred polls escrow the reward into pending claims for
// the claims_open phase.
const (
	RewardModeImmediate = "immediate"
	RewardModeDeferred  = "deferred"
)

// Reward outcome status values reported on a vote receipt
const (
	RewardPaid     = "paid"
	RewardDeferred = "deferred"
	RewardSkipped  = "skipped"
	RewardFailed   = "failed"
)

// Request types

type CreatePollRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Options     []string        `json:"options"`
	ClosesAt    time.Time       `json:"closes_at"`
	Config      *PollConfig     `json:"config,omitempty"`
	Funding     *FundingRequest `json:"funding,omitempty"`
}

// FundingRequest describes the fund being locked at creation (or, for a
// custom token poll, the token it is denominated in). Exactly one of
// RewardPerResponse / MaxResponses may be omitted; the other is derived
// from the net fund.
type FundingRequest struct {
	FundingType       string `json:"funding_type"`
	TokenCanister     string `json:"token_canister,omitempty"`
	TokenSymbol       string `json:"token_symbol,omitempty"`
	TokenDecimals     int    `json:"token_decimals,omitempty"`
	TotalFund         Amount `json:"total_fund"`
	RewardPerResponse Amount `json:"reward_per_response,omitempty"`
	MaxResponses      int64  `json:"max_responses,omitempty"`
	RewardMode        string `json:"reward_mode,omitempty"`
}

type ContributeRequest struct {
	Amount Amount `json:"amount"`
}

type VoteRequest struct {
	OptionID int `json:"option_id"`
}

// Response types

type CreatePollResponse struct {
	PollID int64 `json:"poll_id"`
}

type ContributeResponse struct {
	NetAdded      Amount `json:"net_added"`
	RemainingFund Amount `json:"remaining_fund"`
}

// VoteResponse is the boolean-collapsing adapter around the structured
// vote result.
type VoteResponse struct {
	Success bool `json:"success"`
}

// VoteV2Response surfaces the precise acceptance or rejection reason.
type VoteV2Response struct {
	Status  string       `json:"status"` // "ok" or "rejected"
	Reason  string       `json:"reason,omitempty"`
	Receipt *VoteReceipt `json:"receipt,omitempty"`
}

type ClaimRewardResponse struct {
	Amount Amount `json:"amount"`
}

type WithdrawResponse struct {
	WithdrawnAmount Amount `json:"withdrawn_amount"`
	EscrowAmount    Amount `json:"escrow_amount"`
}

type DonateResponse struct {
	DonatedAmount Amount `json:"donated_amount"`
	EscrowAmount  Amount `json:"escrow_amount"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Option struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Votes int64  `json:"votes"`
}

type PollConfig struct {
	MaxResponses   int64  `json:"max_responses,omitempty"`
	AllowAnonymous bool   `json:"allow_anonymous,omitempty"`
	AllowMultiple  bool   `json:"allow_multiple,omitempty"`
	Visibility     string `json:"visibility,omitempty"`
}

type Poll struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Options     []Option  `json:"options"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	ClosesAt    time.Time `json:"closes_at"`
	TotalVotes  int64     `json:"total_votes"`

	// Voters is the set of principals that have voted. Append-only;
	// len(Voters) == TotalVotes at all times.
	Voters map[string]bool `json:"-"`

	Config    *PollConfig  `json:"config,omitempty"`
	Funding   *FundingInfo `json:"funding,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// HasVoted reports whether the principal already voted on this poll.
func (p *Poll) HasVoted(principal string) bool {
	return p.Voters[principal]
}

// OptionByID returns the option with the given id, or nil.
func (p *Poll) OptionByID(id int) *Option {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i]
		}
	}
	return nil
}

type Contributor struct {
	Principal string `json:"principal"`
	Amount    Amount `json:"amount"`
}

// FundingInfo is the monetary configuration and live accounting attached
// to a poll. TotalFund is the gross deposit; RemainingFund starts at the
// net fund (after the platform fee) and is the only quantity decremented
// by votes, claims, and withdrawals.
type FundingInfo struct {
	FundingType       string            `json:"funding_type"`
	TokenCanister     string            `json:"token_canister,omitempty"` // empty = native ledger
	TokenSymbol       string            `json:"token_symbol"`
	TokenDecimals     int               `json:"token_decimals"`
	RewardMode        string            `json:"reward_mode"`
	TotalFund         Amount            `json:"total_fund"`
	RewardPerResponse Amount            `json:"reward_per_response"`
	MaxResponses      int64             `json:"max_responses"`
	CurrentResponses  int64             `json:"current_responses"`
	RemainingFund     Amount            `json:"remaining_fund"`
	PendingClaims     map[string]Amount `json:"-"`
	Contributors      []Contributor     `json:"contributors,omitempty"`
}

// EscrowTotal returns the sum of all pending claim entries. This amount
// is reserved against withdrawal and donation.
func (f *FundingInfo) EscrowTotal() Amount {
	total := ZeroAmount()
	for _, amt := range f.PendingClaims {
		total = total.Add(amt)
	}
	return total
}

// FeeExempt reports whether the platform fee applies to this fund.
// Treasury-funded polls are exempt.
func (f *FundingInfo) FeeExempt() bool {
	return f.FundingType == FundingTreasuryFunded
}

// VoteReceipt records an accepted vote and its reward outcome.
type VoteReceipt struct {
	ReceiptID string         `json:"receipt_id"`
	PollID    int64          `json:"poll_id"`
	OptionID  int            `json:"option_id"`
	VotedAt   time.Time      `json:"voted_at"`
	Reward    *RewardOutcome `json:"reward,omitempty"`
}

// RewardOutcome reports what happened to the reward attached to a vote.
// A failed reward never invalidates the vote itself.
type RewardOutcome struct {
	Status string `json:"status"`
	Amount Amount `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusPaused, StatusClaimsOpen, StatusClaimsEnded, StatusClosed:
		return true
	}
	return false
}

func ValidFundingType(s string) bool {
	switch s {
	case FundingSelfFunded, FundingCrowdfunded, FundingTreasuryFunded:
		return true
	}
	return false
}

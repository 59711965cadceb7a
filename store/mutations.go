// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/pollvault/models"
)

// UpdateStatus writes a poll's lifecycle status. A single atomic status
// write; vote and fund columns are owned by the other mutators.
func (s *Store) UpdateStatus(pollID int64, status string) error {
	res, err := s.db.Exec(`UPDATE poll SET status = $1 WHERE id = $2`, status, pollID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n == 0 {
		return models.ErrPollNotFound
	}
	return nil
}

// RecordVote applies the four vote mutations as one transaction:
// option counter, poll total, and the voter-set insert. The primary key
// on (poll_id, principal) backs the one-vote-per-identity check even if
// a caller ever bypassed the per-poll lock.
func (s *Store) RecordVote(pollID int64, optionID int, principal string, at time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin record vote: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE option SET votes = votes + 1 WHERE poll_id = $1 AND id = $2
	`, pollID, optionID)
	if err != nil {
		return fmt.Errorf("increment option votes: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrInvalidOption
	}

	if _, err := tx.Exec(`
		UPDATE poll SET total_votes = total_votes + 1 WHERE id = $1
	`, pollID); err != nil {
		return fmt.Errorf("increment total votes: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO voter (poll_id, principal, voted_at)
		VALUES ($1, $2, $3)
	`, pollID, principal, at); err != nil {
		// Unique violation here means a duplicate vote slipped past the
		// engine check; surface it as the typed error.
		return fmt.Errorf("%w: %s", models.ErrAlreadyVoted, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record vote: %w", err)
	}
	return nil
}

// SaveFunding persists the mutable funding accounting fields.
func (s *Store) SaveFunding(pollID int64, f *models.FundingInfo) error {
	res, err := s.db.Exec(`
		UPDATE funding
		SET total_fund = $1, reward_per_response = $2, max_responses = $3,
		    current_responses = $4, remaining_fund = $5
		WHERE poll_id = $6
	`, f.TotalFund.String(), f.RewardPerResponse.String(), f.MaxResponses,
		f.CurrentResponses, f.RemainingFund.String(), pollID)
	if err != nil {
		return fmt.Errorf("save funding: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNoFunding
	}
	return nil
}

// SetPendingClaim writes a principal's escrow entry. A zero amount
// deletes the entry.
func (s *Store) SetPendingClaim(pollID int64, principal string, amount models.Amount) error {
	if amount.IsZero() {
		if _, err := s.db.Exec(`
			DELETE FROM pending_claim WHERE poll_id = $1 AND principal = $2
		`, pollID, principal); err != nil {
			return fmt.Errorf("delete pending claim: %w", err)
		}
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin set pending claim: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE pending_claim SET amount = $1 WHERE poll_id = $2 AND principal = $3
	`, amount.String(), pollID, principal)
	if err != nil {
		return fmt.Errorf("update pending claim: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.Exec(`
			INSERT INTO pending_claim (poll_id, principal, amount)
			VALUES ($1, $2, $3)
		`, pollID, principal, amount.String()); err != nil {
			return fmt.Errorf("insert pending claim: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set pending claim: %w", err)
	}
	return nil
}

// SettleClaim atomically clears a principal's escrow entry and writes
// the debited remaining fund. Called only after the ledger push
// succeeded; the pairing is what gives claims at-most-once payout.
func (s *Store) SettleClaim(pollID int64, principal string, remaining models.Amount) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin settle claim: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		DELETE FROM pending_claim WHERE poll_id = $1 AND principal = $2
	`, pollID, principal)
	if err != nil {
		return fmt.Errorf("clear pending claim: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNothingToClaim
	}

	if _, err := tx.Exec(`
		UPDATE funding SET remaining_fund = $1 WHERE poll_id = $2
	`, remaining.String(), pollID); err != nil {
		return fmt.Errorf("debit fund for claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settle claim: %w", err)
	}
	return nil
}

// AddContribution upserts a contributor row, aggregating repeat
// contributions from the same principal.
func (s *Store) AddContribution(pollID int64, principal string, amount models.Amount) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin add contribution: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRow(`
		SELECT amount FROM contributor WHERE poll_id = $1 AND principal = $2
	`, pollID, principal).Scan(&existing)

	switch {
	case err == nil:
		prev, perr := models.ParseAmount(existing)
		if perr != nil {
			return fmt.Errorf("stored contribution: %w", perr)
		}
		if _, err := tx.Exec(`
			UPDATE contributor SET amount = $1 WHERE poll_id = $2 AND principal = $3
		`, prev.Add(amount).String(), pollID, principal); err != nil {
			return fmt.Errorf("update contribution: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(`
			INSERT INTO contributor (poll_id, principal, amount)
			VALUES ($1, $2, $3)
		`, pollID, principal, amount.String()); err != nil {
			return fmt.Errorf("insert contribution: %w", err)
		}
	default:
		return fmt.Errorf("query contribution: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add contribution: %w", err)
	}
	return nil
}

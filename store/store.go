// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/danielhkuo/pollvault/models"
)

// Store is the authoritative keyed store of Poll and FundingInfo
// records. It owns all mutation SQL and the per-poll lock registry that
// serializes read-modify-write sequences on a single poll. Cross-poll
// operations only share the connection pool.
type Store struct {
	db *sql.DB

	createMu sync.Mutex // serializes poll id assignment

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func New(db *sql.DB) *Store {
	return &Store{
		db:    db,
		locks: make(map[int64]*sync.Mutex),
	}
}

// Lock acquires the mutex for a poll id and returns the unlock func.
// Every engine operation that mutates a poll holds this for its whole
// read-validate-ledger-commit sequence.
func (s *Store) Lock(pollID int64) func() {
	s.locksMu.Lock()
	m, ok := s.locks[pollID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[pollID] = m
	}
	s.locksMu.Unlock()

	m.Lock()
	return m.Unlock
}

// CreatePoll assigns the next poll id and persists the full aggregate.
// Returns the assigned id.
func (s *Store) CreatePoll(p *models.Poll) (int64, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin create poll: %w", err)
	}
	defer tx.Rollback()

	var maxID sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(id) FROM poll`).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("next poll id: %w", err)
	}
	p.ID = maxID.Int64 + 1

	cfg := p.Config
	if cfg == nil {
		cfg = &models.PollConfig{}
	}
	configSet := 0
	if p.Config != nil {
		configSet = 1
	}

	_, err = tx.Exec(`
		INSERT INTO poll (id, title, description, created_by, status, closes_at, total_votes,
		                  config_set, cfg_max_responses, cfg_allow_anonymous, cfg_allow_multiple, cfg_visibility, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10, $11, $12)
	`, p.ID, p.Title, p.Description, p.CreatedBy, p.Status, p.ClosesAt,
		configSet, cfg.MaxResponses, boolInt(cfg.AllowAnonymous), boolInt(cfg.AllowMultiple), cfg.Visibility, p.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert poll: %w", err)
	}

	for _, opt := range p.Options {
		_, err = tx.Exec(`
			INSERT INTO option (poll_id, id, text, votes)
			VALUES ($1, $2, $3, 0)
		`, p.ID, opt.ID, opt.Text)
		if err != nil {
			return 0, fmt.Errorf("insert option %d: %w", opt.ID, err)
		}
	}

	if p.Funding != nil {
		f := p.Funding
		_, err = tx.Exec(`
			INSERT INTO funding (poll_id, funding_type, token_canister, token_symbol, token_decimals,
			                     reward_mode, total_fund, reward_per_response, max_responses, current_responses, remaining_fund)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10)
		`, p.ID, f.FundingType, f.TokenCanister, f.TokenSymbol, f.TokenDecimals,
			f.RewardMode, f.TotalFund.String(), f.RewardPerResponse.String(), f.MaxResponses, f.RemainingFund.String())
		if err != nil {
			return 0, fmt.Errorf("insert funding: %w", err)
		}

		for _, c := range f.Contributors {
			_, err = tx.Exec(`
				INSERT INTO contributor (poll_id, principal, amount)
				VALUES ($1, $2, $3)
			`, p.ID, c.Principal, c.Amount.String())
			if err != nil {
				return 0, fmt.Errorf("insert contributor: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create poll: %w", err)
	}

	return p.ID, nil
}

// GetPoll loads the full poll aggregate: poll row, options, voter set,
// funding, pending claims, and contributors.
func (s *Store) GetPoll(id int64) (*models.Poll, error) {
	p := &models.Poll{Voters: make(map[string]bool)}

	var configSet, allowAnon, allowMulti int
	var cfgMax int64
	var cfgVisibility string

	err := s.db.QueryRow(`
		SELECT id, title, description, created_by, status, closes_at, total_votes,
		       config_set, cfg_max_responses, cfg_allow_anonymous, cfg_allow_multiple, cfg_visibility, created_at
		FROM poll
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.CreatedBy, &p.Status, &p.ClosesAt, &p.TotalVotes,
		&configSet, &cfgMax, &allowAnon, &allowMulti, &cfgVisibility, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query poll %d: %w", id, err)
	}

	if configSet != 0 {
		p.Config = &models.PollConfig{
			MaxResponses:   cfgMax,
			AllowAnonymous: allowAnon != 0,
			AllowMultiple:  allowMulti != 0,
			Visibility:     cfgVisibility,
		}
	}

	if err := s.loadOptions(p); err != nil {
		return nil, err
	}
	if err := s.loadVoters(p); err != nil {
		return nil, err
	}
	if err := s.loadFunding(p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Store) loadOptions(p *models.Poll) error {
	rows, err := s.db.Query(`
		SELECT id, text, votes FROM option WHERE poll_id = $1 ORDER BY id
	`, p.ID)
	if err != nil {
		return fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.Text, &opt.Votes); err != nil {
			return fmt.Errorf("scan option: %w", err)
		}
		p.Options = append(p.Options, opt)
	}
	return rows.Err()
}

func (s *Store) loadVoters(p *models.Poll) error {
	rows, err := s.db.Query(`
		SELECT principal FROM voter WHERE poll_id = $1
	`, p.ID)
	if err != nil {
		return fmt.Errorf("query voters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var principal string
		if err := rows.Scan(&principal); err != nil {
			return fmt.Errorf("scan voter: %w", err)
		}
		p.Voters[principal] = true
	}
	return rows.Err()
}

func (s *Store) loadFunding(p *models.Poll) error {
	f := &models.FundingInfo{PendingClaims: make(map[string]models.Amount)}
	var totalFund, rewardPer, remaining string

	err := s.db.QueryRow(`
		SELECT funding_type, token_canister, token_symbol, token_decimals, reward_mode,
		       total_fund, reward_per_response, max_responses, current_responses, remaining_fund
		FROM funding
		WHERE poll_id = $1
	`, p.ID).Scan(
		&f.FundingType, &f.TokenCanister, &f.TokenSymbol, &f.TokenDecimals, &f.RewardMode,
		&totalFund, &rewardPer, &f.MaxResponses, &f.CurrentResponses, &remaining,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // unfunded poll
	}
	if err != nil {
		return fmt.Errorf("query funding: %w", err)
	}

	if f.TotalFund, err = models.ParseAmount(totalFund); err != nil {
		return fmt.Errorf("stored total_fund: %w", err)
	}
	if f.RewardPerResponse, err = models.ParseAmount(rewardPer); err != nil {
		return fmt.Errorf("stored reward_per_response: %w", err)
	}
	if f.RemainingFund, err = models.ParseAmount(remaining); err != nil {
		return fmt.Errorf("stored remaining_fund: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT principal, amount FROM pending_claim WHERE poll_id = $1
	`, p.ID)
	if err != nil {
		return fmt.Errorf("query pending claims: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var principal, amountStr string
		if err := rows.Scan(&principal, &amountStr); err != nil {
			return fmt.Errorf("scan pending claim: %w", err)
		}
		amt, err := models.ParseAmount(amountStr)
		if err != nil {
			return fmt.Errorf("stored claim amount: %w", err)
		}
		f.PendingClaims[principal] = amt
	}
	if err := rows.Err(); err != nil {
		return err
	}

	crows, err := s.db.Query(`
		SELECT principal, amount FROM contributor WHERE poll_id = $1 ORDER BY principal
	`, p.ID)
	if err != nil {
		return fmt.Errorf("query contributors: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		var c models.Contributor
		var amountStr string
		if err := crows.Scan(&c.Principal, &amountStr); err != nil {
			return fmt.Errorf("scan contributor: %w", err)
		}
		if c.Amount, err = models.ParseAmount(amountStr); err != nil {
			return fmt.Errorf("stored contribution: %w", err)
		}
		f.Contributors = append(f.Contributors, c)
	}
	if err := crows.Err(); err != nil {
		return err
	}

	p.Funding = f
	return nil
}

// ListByCreator returns all polls created by a principal, newest first.
// Aggregates are fully loaded; creator dashboards need the funding
// accounting.
func (s *Store) ListByCreator(principal string) ([]*models.Poll, error) {
	return s.listByQuery(`SELECT id FROM poll WHERE created_by = $1 ORDER BY id DESC`, principal)
}

// List returns all polls, newest first.
func (s *Store) List() ([]*models.Poll, error) {
	return s.listByQuery(`SELECT id FROM poll ORDER BY id DESC`)
}

func (s *Store) listByQuery(query string, args ...any) ([]*models.Poll, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan poll id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	polls := make([]*models.Poll, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetPoll(id)
		if err != nil {
			return nil, err
		}
		polls = append(polls, p)
	}
	return polls, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

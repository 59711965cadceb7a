// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Monetary columns are TEXT: amounts are arbitrary-precision integers in
// the token's smallest unit and must never pass through floats.
const schema = `
-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    created_by TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active'
        CHECK (status IN ('active', 'paused', 'claims_open', 'claims_ended', 'closed')),
    closes_at TIMESTAMP NOT NULL,
    total_votes BIGINT NOT NULL DEFAULT 0,
    config_set BIGINT NOT NULL DEFAULT 0,
    cfg_max_responses BIGINT NOT NULL DEFAULT 0,
    cfg_allow_anonymous BIGINT NOT NULL DEFAULT 0,
    cfg_allow_multiple BIGINT NOT NULL DEFAULT 0,
    cfg_visibility TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_poll_created_by ON poll(created_by);
CREATE INDEX IF NOT EXISTS idx_poll_status ON poll(status);

-- Options (id is the per-poll option index)
CREATE TABLE IF NOT EXISTS option (
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    id BIGINT NOT NULL,
    text TEXT NOT NULL,
    votes BIGINT NOT NULL DEFAULT 0,
    PRIMARY KEY (poll_id, id)
);

-- Voter set (append-only; one row per principal per poll)
CREATE TABLE IF NOT EXISTS voter (
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    principal TEXT NOT NULL,
    voted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (poll_id, principal)
);

-- Funding accounting (at most one row per poll)
CREATE TABLE IF NOT EXISTS funding (
    poll_id BIGINT PRIMARY KEY REFERENCES poll(id) ON DELETE CASCADE,
    funding_type TEXT NOT NULL
        CHECK (funding_type IN ('self_funded', 'crowdfunded', 'treasury_funded')),
    token_canister TEXT NOT NULL DEFAULT '',
    token_symbol TEXT NOT NULL DEFAULT '',
    token_decimals BIGINT NOT NULL DEFAULT 8,
    reward_mode TEXT NOT NULL DEFAULT 'immediate'
        CHECK (reward_mode IN ('immediate', 'deferred')),
    total_fund TEXT NOT NULL,
    reward_per_response TEXT NOT NULL,
    max_responses BIGINT NOT NULL DEFAULT 0,
    current_responses BIGINT NOT NULL DEFAULT 0,
    remaining_fund TEXT NOT NULL
);

-- Escrowed rewards awaiting the claims_open phase
CREATE TABLE IF NOT EXISTS pending_claim (
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    principal TEXT NOT NULL,
    amount TEXT NOT NULL,
    PRIMARY KEY (poll_id, principal)
);

-- Crowdfund contributors (amount aggregates repeat contributions)
CREATE TABLE IF NOT EXISTS contributor (
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    principal TEXT NOT NULL,
    amount TEXT NOT NULL,
    PRIMARY KEY (poll_id, principal)
);
`

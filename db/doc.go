// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and
indexes. The schema is dialect-portable between sqlite and PostgreSQL:
no serial columns (poll ids are assigned by the store) and
CURRENT_TIMESTAMP defaults.

# Tables

  - poll: poll metadata, lifecycle status, vote counters, config
  - option: voting options with per-option vote counters
  - voter: append-only one-vote-per-principal set
  - funding: monetary configuration and live fund accounting
  - pending_claim: escrowed rewards awaiting the claims phase
  - contributor: crowdfund contributor amounts

# Relationships

	poll 1──* option
	poll 1──* voter
	poll 1──1 funding
	poll 1──* pending_claim
	poll 1──* contributor

All foreign keys use ON DELETE CASCADE. Monetary columns are TEXT
holding base-10 integers; they never pass through floating point.
*/
package db

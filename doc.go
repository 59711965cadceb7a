// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Poll Vault API server.

Poll Vault is a funded-polling service: poll creators lock token funds
behind a poll, each accepted vote earns the voter a reward (paid
immediately or escrowed for a claim phase), and unused funds are
withdrawn or donated after the poll ends. Token movement happens on an
external ICRC-style ledger; the server never holds keys, it instructs
the ledger and keeps its own accounting in step.

# Starting the Server

The server requires environment variables or CLI flags for
configuration:

	DATABASE_URL=polls.db LEDGER_URL=http://localhost:8000 \
	TREASURY_ACCOUNT=treasury PLATFORM_ACCOUNT=platform go run main.go

Or with flags:

	go run main.go -p 3319 -d polls.db -ledger-url http://localhost:8000 \
	  -treasury treasury -platform-account platform

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - LEDGER_URL (-ledger-url): Token ledger gateway base URL
  - TREASURY_ACCOUNT (-treasury): Account receiving fees and donations
  - PLATFORM_ACCOUNT (-platform-account): Escrow account holding locked funds

Optional settings:

  - PORT (-p): Server port (default: 3319)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - FEE_PERCENT (-fee-percent): Platform fee percent (default: 10)
  - LEDGER_TIMEOUT_SECONDS (-ledger-timeout): Ledger request timeout (default: 15)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - engine: poll lifecycle, voting, and reward settlement core
  - store: SQL persistence and the per-poll lock registry
  - ledger: client for the external token ledger
  - handlers: HTTP request handlers (polls, voting, funding)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, caller identity
  - models: Domain, request, and response types
  - auth: Principal validation and receipt/transfer key generation
*/
package main

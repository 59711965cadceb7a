// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3319)
  - DatabaseURL: sqlite file or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - LedgerURL: base URL of the token ledger service (required)
  - LedgerTimeout: per-request ledger timeout (default: 15s)
  - FeePercent: one-time platform fee on locked funds (default: 10)
  - TreasuryAccount: ledger account receiving fees and donations (required)
  - PlatformAccount: ledger account holding escrowed poll funds (required)

# Environment Variables

Flags fall back to environment variables:

	PORT                   → -p
	DATABASE_URL           → -d
	DATABASE_TYPE          → -t
	LEDGER_URL             → -ledger-url
	LEDGER_TIMEOUT_SECONDS → -ledger-timeout
	FEE_PERCENT            → -fee-percent
	TREASURY_ACCOUNT       → -treasury
	PLATFORM_ACCOUNT       → -platform-account

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or if
FEE_PERCENT falls outside 0-100. The fee percent and treasury account
are configuration owned here precisely so the funding engine never
recomputes them ad hoc.
*/
package cliparse

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Ledger settings
	LedgerURL     string
	LedgerTimeout time.Duration

	// Funding policy. FeePercent is the one-time platform fee applied
	// at fund-lock time; TreasuryAccount receives fees and donations.
	FeePercent      int64
	TreasuryAccount string
	PlatformAccount string
}

// ParseFlags validates flags with environment variable fallback
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var ledgerTimeoutSec int

	fs := flag.NewFlagSet("pollvault", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Ledger config
	fs.StringVar(&cfg.LedgerURL, "ledger-url", "", "Token ledger base URL")
	fs.IntVar(&ledgerTimeoutSec, "ledger-timeout", 0, "Ledger request timeout in seconds")

	// Funding policy (prefer env, but allow CLI for dev)
	fs.Int64Var(&cfg.FeePercent, "fee-percent", -1, "Platform fee percent (default 10)")
	fs.StringVar(&cfg.TreasuryAccount, "treasury", "", "Platform treasury account")
	fs.StringVar(&cfg.PlatformAccount, "platform-account", "", "Platform escrow account on the ledger")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3319 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("DATABASE_TYPE must be sqlite or postgres")
	}

	if cfg.LedgerURL == "" {
		cfg.LedgerURL = os.Getenv("LEDGER_URL")
	}
	if cfg.LedgerURL == "" {
		return Config{}, errors.New("ledger URL required (use -ledger-url or LEDGER_URL env)")
	}

	if ledgerTimeoutSec == 0 {
		if s := os.Getenv("LEDGER_TIMEOUT_SECONDS"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid LEDGER_TIMEOUT_SECONDS env variable")
			}
			ledgerTimeoutSec = v
		} else {
			ledgerTimeoutSec = 15
		}
	}
	cfg.LedgerTimeout = time.Duration(ledgerTimeoutSec) * time.Second

	if cfg.FeePercent < 0 {
		if s := os.Getenv("FEE_PERCENT"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return Config{}, errors.New("invalid FEE_PERCENT env variable")
			}
			cfg.FeePercent = v
		} else {
			cfg.FeePercent = 10
		}
	}
	if cfg.FeePercent < 0 || cfg.FeePercent > 100 {
		return Config{}, errors.New("FEE_PERCENT must be between 0 and 100")
	}

	// Accounts - MUST be provided, funded polls cannot settle without them
	if cfg.TreasuryAccount == "" {
		cfg.TreasuryAccount = os.Getenv("TREASURY_ACCOUNT")
	}
	if cfg.TreasuryAccount == "" {
		return Config{}, errors.New("TREASURY_ACCOUNT required")
	}

	if cfg.PlatformAccount == "" {
		cfg.PlatformAccount = os.Getenv("PLATFORM_ACCOUNT")
	}
	if cfg.PlatformAccount == "" {
		return Config{}, errors.New("PLATFORM_ACCOUNT required")
	}

	return cfg, nil
}

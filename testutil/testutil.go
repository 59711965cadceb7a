// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollvault/cliparse"
	"github.com/danielhkuo/pollvault/db"
	"github.com/danielhkuo/pollvault/engine"
	"github.com/danielhkuo/pollvault/models"
	"github.com/danielhkuo/pollvault/store"
)

var dbCounter atomic.Int64

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. Each call gets its own database so tests stay independent.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Shared-cache in-memory databases vanish when the last connection
	// closes; one connection also sidesteps SQLITE_BUSY under
	// concurrent test traffic.
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3319,
		DatabaseURL:     ":memory:",
		DatabaseType:    "sqlite",
		LedgerURL:       "http://ledger.test",
		LedgerTimeout:   5 * time.Second,
		FeePercent:      10,
		TreasuryAccount: "treasury-account",
		PlatformAccount: "platform-account",
	}
}

// Transfer records one ledger movement observed by the FakeLedger.
type Transfer struct {
	Account string
	Amount  models.Amount
}

// FakeLedger is an in-memory ledger.Client with failure injection. All
// pulls and pushes are recorded in order; tests assert on them to check
// commit-or-compensate behavior.
type FakeLedger struct {
	mu     sync.Mutex
	Pulls  []Transfer
	Pushes []Transfer

	// PullErr / PushErr fail every call when set.
	PullErr error
	PushErr error

	// FailNextPushes fails the next N pushes, then succeeds. Used to
	// test compensation paths without failing the whole scenario.
	FailNextPushes int
}

func (l *FakeLedger) BalanceOf(ctx context.Context, account string) (models.Amount, error) {
	return models.ZeroAmount(), nil
}

func (l *FakeLedger) Pull(ctx context.Context, from string, amount models.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.PullErr != nil {
		return l.PullErr
	}
	l.Pulls = append(l.Pulls, Transfer{Account: from, Amount: amount})
	return nil
}

func (l *FakeLedger) Push(ctx context.Context, to string, amount models.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.PushErr != nil {
		return l.PushErr
	}
	if l.FailNextPushes > 0 {
		l.FailNextPushes--
		return fmt.Errorf("%w: injected push failure", models.ErrLedgerFailure)
	}
	l.Pushes = append(l.Pushes, Transfer{Account: to, Amount: amount})
	return nil
}

func (l *FakeLedger) Ping(ctx context.Context) error { return nil }

// PushedTo sums all recorded pushes to the given account.
func (l *FakeLedger) PushedTo(account string) models.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := models.ZeroAmount()
	for _, tr := range l.Pushes {
		if tr.Account == account {
			total = total.Add(tr.Amount)
		}
	}
	return total
}

// PushCount returns the number of successful pushes to the account.
func (l *FakeLedger) PushCount(account string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, tr := range l.Pushes {
		if tr.Account == account {
			n++
		}
	}
	return n
}

// SetupTestEngine wires a fresh store, fake ledger, and engine with the
// standard test configuration.
func SetupTestEngine(t *testing.T) (*engine.Engine, *store.Store, *FakeLedger) {
	t.Helper()

	conn := SetupTestDB(t)
	st := store.New(conn)
	lg := &FakeLedger{}
	return engine.New(st, lg, GetTestConfig()), st, lg
}

// FundedPollRequest builds a create request for a self-funded poll with
// the given gross fund and per-response reward.
func FundedPollRequest(totalFund, rewardPer int64, rewardMode string) models.CreatePollRequest {
	return models.CreatePollRequest{
		Title:    "Test Poll",
		Options:  []string{"Yes", "No"},
		ClosesAt: time.Now().Add(24 * time.Hour),
		Funding: &models.FundingRequest{
			FundingType:       models.FundingSelfFunded,
			TokenSymbol:       "ICP",
			TotalFund:         models.NewAmount(totalFund),
			RewardPerResponse: models.NewAmount(rewardPer),
			RewardMode:        rewardMode,
		},
	}
}

// UnfundedPollRequest builds a create request with no funding block.
func UnfundedPollRequest() models.CreatePollRequest {
	return models.CreatePollRequest{
		Title:    "Test Poll",
		Options:  []string{"Yes", "No"},
		ClosesAt: time.Now().Add(24 * time.Hour),
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// DecodeJSON decodes a response recorder body into v, failing the test
// on malformed JSON.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}

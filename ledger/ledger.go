// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"

	"github.com/danielhkuo/pollvault/auth"
	"github.com/danielhkuo/pollvault/models"
)

// Client is the thin adapter over the external fungible-token service.
// All calls cross a trust boundary and may be slow or fail; callers must
// never assume success without an explicit nil error, and must not
// commit internal accounting until the outcome is known.
type Client interface {
	// BalanceOf returns the balance of an account.
	BalanceOf(ctx context.Context, account string) (models.Amount, error)

	// Pull moves amount from the given account onto the platform
	// account, spending an allowance the account holder granted
	// beforehand (approve happens outside this system). Fails if the
	// allowance is insufficient.
	Pull(ctx context.Context, from string, amount models.Amount) error

	// Push pays amount from the platform account to the given account.
	Push(ctx context.Context, to string, amount models.Amount) error

	// Ping probes ledger connectivity.
	Ping(ctx context.Context) error
}

// HTTPClient speaks JSON to an ICRC-style ledger gateway. Read-only
// calls are retried with Fibonacci backoff; transfers are sent exactly
// once per idempotency key so a gateway-side retry cannot double-spend.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

var _ Client = (*HTTPClient)(nil)

func Dial(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type balanceRequest struct {
	Account string `json:"account"`
}

type balanceResponse struct {
	Amount models.Amount `json:"amount"`
}

type transferRequest struct {
	TransferKey string        `json:"transfer_key"`
	From        string        `json:"from,omitempty"`
	To          string        `json:"to,omitempty"`
	Amount      models.Amount `json:"amount"`
}

type transferResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (c *HTTPClient) BalanceOf(ctx context.Context, account string) (models.Amount, error) {
	var resp balanceResponse

	action := func(attempt uint) error {
		return c.post(ctx, "/icrc1/balance_of", balanceRequest{Account: account}, &resp)
	}
	if err := retry.Retry(action, strategy.Limit(3), strategy.Backoff(backoff.Fibonacci(500*time.Millisecond))); err != nil {
		return models.Amount{}, fmt.Errorf("%w: balance_of %s: %s", models.ErrLedgerFailure, account, err)
	}

	return resp.Amount, nil
}

func (c *HTTPClient) Pull(ctx context.Context, from string, amount models.Amount) error {
	return c.transfer(ctx, "/icrc2/transfer_from", transferRequest{
		TransferKey: auth.NewTransferKey(),
		From:        from,
		Amount:      amount,
	})
}

func (c *HTTPClient) Push(ctx context.Context, to string, amount models.Amount) error {
	return c.transfer(ctx, "/icrc1/transfer", transferRequest{
		TransferKey: auth.NewTransferKey(),
		To:          to,
		Amount:      amount,
	})
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	action := func(attempt uint) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ledger health returned %d", resp.StatusCode)
		}
		return nil
	}
	if err := retry.Retry(action, strategy.Limit(5), strategy.Backoff(backoff.Fibonacci(time.Second))); err != nil {
		return fmt.Errorf("%w: ping: %s", models.ErrLedgerFailure, err)
	}
	return nil
}

// transfer is deliberately single-shot: a transfer that timed out may
// still have applied on the ledger, and the idempotency key only helps
// if the retry decision is made by a caller that knows it is retrying.
func (c *HTTPClient) transfer(ctx context.Context, path string, req transferRequest) error {
	var resp transferResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return fmt.Errorf("%w: %s: %s", models.ErrLedgerFailure, path, err)
	}
	if !resp.OK {
		return fmt.Errorf("%w: %s: %s", models.ErrLedgerFailure, path, resp.Error)
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

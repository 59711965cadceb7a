// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"time"

	"github.com/danielhkuo/pollvault/cliparse"
	"github.com/danielhkuo/pollvault/ledger"
	"github.com/danielhkuo/pollvault/models"
	"github.com/danielhkuo/pollvault/store"
)

// Engine is the poll funding, voting, and reward-settlement core. Every
// mutating operation on a poll runs under that poll's store lock, so
// read-modify-write sequences on one poll never interleave; operations
// on different polls run in parallel.
type Engine struct {
	store  *store.Store
	ledger ledger.Client
	cfg    cliparse.Config

	// now is injectable for tests
	now func() time.Time
}

func New(st *store.Store, lc ledger.Client, cfg cliparse.Config) *Engine {
	return &Engine{
		store:  st,
		ledger: lc,
		cfg:    cfg,
		now:    time.Now,
	}
}

// GetPoll returns the full poll aggregate.
func (e *Engine) GetPoll(id int64) (*models.Poll, error) {
	return e.store.GetPoll(id)
}

// ListMyPolls returns all polls created by the principal, newest first.
func (e *Engine) ListMyPolls(principal string) ([]*models.Poll, error) {
	return e.store.ListByCreator(principal)
}

// ListPolls returns all polls, newest first.
func (e *Engine) ListPolls() ([]*models.Poll, error) {
	return e.store.List()
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollvault/models"
	"github.com/danielhkuo/pollvault/testutil"
)

func TestLifecycleCreatorOnly(t *testing.T) {
	eng, _, _ := testutil.SetupTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePoll(ctx, creator, testutil.UnfundedPollRequest())
	require.NoError(t, err)

	_, err = eng.PausePoll(p.ID, "mallory-user")
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	_, err = eng.ClosePoll(p.ID, "mallory-user")
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	stored, err := eng.GetPoll(p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
}

func TestLifecycleTransitionGraph(t *testing.T) {
	eng, _, _ := testutil.SetupTestEngine(t)
	ctx := context.Background()

	// active -> paused -> active -> claims_open -> claims_ended -> closed
	p, err := eng.CreatePoll(ctx, creator, testutil.UnfundedPollRequest())
	require.NoError(t, err)

	p, err = eng.PausePoll(p.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, p.Status)

	// Pause is not re-entrant.
	_, err = eng.PausePoll(p.ID, creator)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	p, err = eng.ResumePoll(p.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, p.Status)

	p, err = eng.StartRewardsClaiming(p.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClaimsOpen, p.Status)

	// No way back to voting from the claims phase.
	_, err = eng.ResumePoll(p.ID, creator)
	assert.ErrorIs(t, err, models.ErrInvalidState)
	_, err = eng.PausePoll(p.ID, creator)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	p, err = eng.EndRewardsClaiming(p.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClaimsEnded, p.Status)

	p, err = eng.ClosePoll(p.ID, creator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, p.Status)
}

func TestLifecycleClosedIsTerminal(t *testing.T) {
	eng, _, _ := testutil.SetupTestEngine(t)
	ctx := context.Background()

	p, err := eng.CreatePoll(ctx, creator, testutil.UnfundedPollRequest())
	require.NoError(t, err)
	_, err = eng.ClosePoll(p.ID, creator)
	require.NoError(t, err)

	for name, op := range map[string]func(int64, string) (*models.Poll, error){
		"pause":        eng.PausePoll,
		"resume":       eng.ResumePoll,
		"start-claims": eng.StartRewardsClaiming,
		"end-claims":   eng.EndRewardsClaiming,
		"close":        eng.ClosePoll,
	} {
		_, err := op(p.ID, creator)
		assert.ErrorIs(t, err, models.ErrInvalidState, "transition %q out of closed must fail", name)
	}
}

func TestLifecycleUnknownPoll(t *testing.T) {
	eng, _, _ := testutil.SetupTestEngine(t)

	_, err := eng.PausePoll(404, creator)
	assert.ErrorIs(t, err, models.ErrPollNotFound)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"testing"

	"github.com/danielhkuo/pollvault/models"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.StatusActive, models.StatusPaused, true},
		{models.StatusActive, models.StatusClaimsOpen, true},
		{models.StatusActive, models.StatusClosed, true},
		{models.StatusActive, models.StatusClaimsEnded, false},
		{models.StatusPaused, models.StatusActive, true},
		{models.StatusPaused, models.StatusClaimsOpen, true},
		{models.StatusPaused, models.StatusClosed, true},
		{models.StatusClaimsOpen, models.StatusClaimsEnded, true},
		{models.StatusClaimsOpen, models.StatusClosed, true},
		{models.StatusClaimsOpen, models.StatusActive, false},
		{models.StatusClaimsEnded, models.StatusClosed, true},
		{models.StatusClaimsEnded, models.StatusClaimsOpen, false},
		{models.StatusClosed, models.StatusActive, false},
		{models.StatusClosed, models.StatusClosed, false},
		{"unknown", models.StatusClosed, false},
	}

	for _, tc := range tests {
		if got := transitionAllowed(tc.from, tc.to); got != tc.want {
			t.Errorf("transitionAllowed(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

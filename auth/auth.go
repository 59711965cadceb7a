// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrInvalidPrincipal = errors.New("invalid principal")

// Principal length bounds. Principals are textual ledger identities in
// the dash-separated lowercase base32 style; wallet and session
// management happen upstream, so only the shape is validated here.
const (
	minPrincipalLen = 5
	maxPrincipalLen = 63
)

// ValidatePrincipal checks that p looks like a ledger principal:
// lowercase letters, digits, and interior dashes.
func ValidatePrincipal(p string) error {
	if len(p) < minPrincipalLen || len(p) > maxPrincipalLen {
		return fmt.Errorf("%w: length must be %d-%d characters", ErrInvalidPrincipal, minPrincipalLen, maxPrincipalLen)
	}
	if p[0] == '-' || p[len(p)-1] == '-' {
		return fmt.Errorf("%w: leading or trailing dash", ErrInvalidPrincipal)
	}
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-':
			if p[i-1] == '-' {
				return fmt.Errorf("%w: consecutive dashes", ErrInvalidPrincipal)
			}
		default:
			return fmt.Errorf("%w: character %q", ErrInvalidPrincipal, c)
		}
	}
	return nil
}

// NewReceiptID returns a unique id for a vote receipt.
func NewReceiptID() string {
	return uuid.NewString()
}

// NewTransferKey returns an idempotency key attached to every outgoing
// ledger transfer, so the ledger can deduplicate a retried request.
func NewTransferKey() string {
	return uuid.NewString()
}

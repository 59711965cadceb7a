// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides caller identity validation and id generation.

# Principals

Callers are identified by a ledger principal supplied in the
X-Principal header by the upstream gateway. Wallet connection and
session management are out of scope; this package only validates the
principal's shape:

	if err := auth.ValidatePrincipal(p); err != nil { ... }

# IDs

Vote receipts and outgoing ledger transfers get UUIDs:

	receiptID := auth.NewReceiptID()
	key := auth.NewTransferKey()

The transfer key is sent with every ledger transfer as an idempotency
key so the external ledger can deduplicate retries.
*/
package auth

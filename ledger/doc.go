// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger adapts the external fungible-token service.

The Client interface has exactly three money operations:

  - BalanceOf: read an account balance
  - Pull: transfer_from against a pre-granted allowance (the approve
    step is performed by the caller, outside this system)
  - Push: direct transfer from the platform account (payouts)

No business logic lives here. The funding engine owns all accounting
decisions and treats every call as one that can fail after being sent
but before responding.

The HTTP implementation retries read-only calls (BalanceOf, Ping) with
Fibonacci backoff. Transfers are single-shot with an idempotency key;
retry policy for money movement belongs to the engine's
commit-or-compensate logic, not to the transport.
*/
package ledger

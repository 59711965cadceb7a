// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the poll funding, voting, and
reward-settlement core.

Three concerns live here, one file each:

  - vote.go: the voting engine — ordered precondition checks and the
    atomic vote transition
  - lifecycle.go: the creator-guarded status state machine
  - funding.go: the funding and escrow manager — fund locking with the
    one-time platform fee, per-vote reward settlement (immediate or
    deferred), claims, and end-of-life withdraw/donate settlement

The funding manager is the only component that talks to the ledger.
Every accounting mutation that depends on a ledger call follows
tentative debit → await call → commit or compensate; a failed external
call never leaves partial internal state.

All mutating entrypoints serialize on the poll's store lock, held
across the whole read-validate-ledger-commit sequence. A cast vote is
never undone by a failed reward; the reward outcome rides on the
receipt instead.
*/
package engine

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the authoritative poll store.

All poll and funding mutation SQL lives here. The engine never touches
the database directly; it loads the aggregate with GetPoll, validates,
and commits through the targeted mutators (RecordVote, SaveFunding,
SetPendingClaim, SettleClaim, AddContribution, UpdateStatus).

# Serialization

Store.Lock(pollID) hands out a per-poll mutex. Every mutating engine
operation holds it across its whole read-modify-write sequence,
including any ledger call in the middle, so concurrent operations on
one poll are equivalent to some serial order. Operations on different
polls proceed in parallel.

RecordVote additionally wraps the three vote mutations (option counter,
poll total, voter insert) in one SQL transaction, and the voter table's
primary key makes double voting impossible even under store misuse.
*/
package store

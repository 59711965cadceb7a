// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers.

Handlers are thin: they parse the path and body, resolve the caller
principal, call one engine operation, and translate the result. All
poll semantics live in the engine; all error-to-status mapping lives in
writeEngineError so every handler reports the same way.

The voting surface comes in two shapes. POST /polls/{id}/vote is the
legacy boolean endpoint; POST /polls/{id}/vote_v2 returns a structured
result with a reason code on rejection and a receipt with the reward
outcome on success.
*/
package handlers

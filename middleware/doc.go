// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP helpers shared by all handlers.

  - WithLogging: request start/completion logging with duration
  - JSONResponse / ErrorResponse: uniform JSON encoding
  - ParseJSONBody: request body decoding
  - CORS: cross-origin support for browser frontends
  - CallerPrincipal: validated caller identity from the X-Principal
    header (session verification is the upstream gateway's job)
*/
package middleware

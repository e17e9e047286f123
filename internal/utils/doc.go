// Package utils provides shared low-level helpers used throughout the
// switchboard internals. It covers HTTP helpers for JSON round-trips, raw
// POST exchanges, and streaming (SSE) connections to provider APIs, plus a
// rate-limited client constructor and small pointer, string, and timing
// utilities.
//
// Key entry points: [DoPostRaw] for request/response exchanges where the
// caller normalizes non-2xx payloads itself, [DoGetJSON] for plain JSON GETs,
// [DoPostStream] for opening an SSE connection, and [NewRateLimitedClient]
// for building a throttled http.Client.
package utils

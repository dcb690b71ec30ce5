// Package httputil provides the JSON request and response helpers used by
// the jsontree HTTP API.
//
// # Overview
//
//   - [WriteJSON]: encode a value with a status code
//   - [WriteError]: encode an error as {"code", "message"} with the status
//     its error code maps to ([StatusFor])
//   - [DecodeJSON]: decode a size-limited request body, rejecting unknown fields
//
// # Status mapping
//
// Error codes from pkg/errors map to HTTP statuses:
//
//   - 400: INVALID_INPUT, INVALID_FORMAT, INVALID_THEME, INVALID_QUERY,
//     INVALID_PATH, EMPTY_QUERY, UNSUPPORTED
//   - 404: NOT_FOUND, FILE_NOT_FOUND, SESSION_NOT_FOUND, SESSION_EXPIRED, NO_MATCH
//   - 422: INVALID_JSON, TOO_DEEP
//   - 500: everything else
//
// Messages of 5xx responses are replaced with a generic text so internal
// details do not leak to clients.
package httputil

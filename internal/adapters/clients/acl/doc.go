// Package acl is the anti-corruption layer in front of the carrier rate
// API. Carrier DTOs stay unexported in this package: callers exchange
// RateRequest and Rate values, and every failure comes back as a domain
// error.
//
// HTTP failures map as follows:
//   - 404 -> domain.ErrNotFound
//   - 409 -> domain.ErrConflict
//   - 400, 422 and other 4xx -> domain.ErrValidation
//   - 401, 403, 429, 5xx and transport errors -> domain.ErrUnavailable
package acl

// Package middleware provides the gin middleware of the popup host: CORS for
// extension origins and per-IP or global rate limiting.
package middleware

// Package api implements the versioned JSON HTTP API.
//
// All endpoints live under /api/v1. Successful responses carry
// {"status":"success", ...}; failures carry {"status":"fail"} for 4xx
// and {"status":"error"} for 5xx with a message. Domain errors are
// mapped to statuses in one place (writeDomainError); handlers never
// pick status codes for store or auth errors themselves.
//
// Authentication and role gates are applied at route registration, so
// the handler bodies can assume MustFromContext succeeds on protected
// routes. Ownership checks (seller-or-admin, self-or-admin) stay inside
// the handlers because they need the loaded record.
package api

// Package auth implements account authentication and role-based access
// control.
//
// Identity is carried in signed HS256 JWTs holding the user ID, role,
// issue time, and expiry. The token's role claim is informational only:
// the HTTP middleware re-resolves the user from the store on every
// request, so a role change or deletion takes effect on the next request
// regardless of what outstanding tokens say.
//
// Passwords are hashed with bcrypt. Login failures are indistinguishable
// between an unknown email and a wrong password, and the unknown-email
// path performs a dummy bcrypt comparison so the two cases take similar
// time.
//
// Handlers read the authenticated user from the request context via
// FromContext; Middleware and RequireAdmin gate routes.
package auth

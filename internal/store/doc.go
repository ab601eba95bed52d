// Package store provides persistent storage for the kirppis server using SQLite.
//
// The package is interface-driven: UserStore, CategoryStore, and ItemStore
// describe the operations each consumer needs, and the combined Store
// interface is what the server wires together. SQLiteStore implements all
// interfaces in a single struct; MockStore is an in-memory implementation
// for tests.
//
// All writes are single-row operations; the store relies on SQLite's own
// atomicity and performs no cross-record transactions. Timestamps are
// stored as RFC 3339 UTC strings. Emails are normalized (lowercased,
// trimmed) before storage and lookup, and uniqueness is enforced by the
// schema; a violation surfaces as ErrDuplicateEmail.
package store

// Package sqlite stores the generation ledger in a SQLite database.
//
// It uses modernc.org/sqlite, a pure-Go driver, so the binary needs no CGO.
// The schema is created by the embedded migrations on first open.
package sqlite

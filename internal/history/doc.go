// Package history keeps a durable record of every chunkmux run.
//
// Runs are stored in a small SQLite database (modernc.org/sqlite, no cgo)
// under the state directory, with schema changes applied from embedded
// migrations. The most recent run is additionally written as a JSON manifest
// with an atomic rename so external tooling can poll a single file.
package history

// Package sqlite implements the storage repositories on an embedded SQLite
// database through sqlx and the pure-Go modernc.org/sqlite driver.
package sqlite

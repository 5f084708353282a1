// Package archive provides SQLite-backed storage for analysis provenance.
//
// Every completed analysis appends one write-once row: which instrument and
// reaction were used, which source files went in, how many injections
// survived normalization, and where the report landed. The history command
// reads it back; nothing ever updates or deletes a row.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// IDs are random UUIDs assigned at insert time. Listing orders by created_at
// (fixed-width RFC 3339 text) descending, then id, so results are stable even
// for same-instant rows.
package archive

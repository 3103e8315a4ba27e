// Package store provides SQLite-backed durable storage for a tournament.
//
// The store holds three tables:
//   - Items: the catalog (id, reference, rating, eliminated)
//   - Matches: the append-only match ledger, ordered by seq
//   - Tournament: one row carrying the tournament id and the finished marker
//
// # Invariants
//
// Append-only ledger
//   - Triggers reject UPDATE and DELETE on matches
//   - Round-boundary sentinels are rows whose participants and winner are 0
//
// Monotonic catalog
//   - Ratings never decrease, eliminated never goes back to 0 (triggers)
//
// Atomic outcomes
//   - CommitOutcome applies the rating point, the eliminations and the
//     ledger row in one transaction; a crash leaves all or none of them
//
// Deterministic reads
//   - Items are returned ORDER BY id ASC unless ranked; ranking ties break
//     on id, which is the insertion order
//   - Matches are returned ORDER BY seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=FULL: a returned append survives a crash
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//   - One open connection: the store assumes a single writer process
package store

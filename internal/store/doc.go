// Package store provides SQLite-backed durable storage for bitshub.
//
// Two tables live in one database file:
//   - slices: the persisted state slices, one JSON document per storage key
//   - journal: an append-only log of dispatched actions and their outcome
//
// Slice writes are full overwrites. The journal is ordered by the engine's
// logical seq, never by wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store

// Package persist mirrors engine state into durable key/value storage and
// restores it on startup.
//
// Mirror is an engine observer. After every accepted transition it
// serializes each persisted slice, compares a SHA-256 digest against the last
// successful write, and overwrites only the slices that changed. Write
// failures are logged and the in-memory state stays authoritative.
//
// Rehydrate runs once before the engine accepts intents. It reads every key
// and replays the equivalent actions through Dispatch, so restored state
// passes through the same transitions as live state.
//
// Journal is a second observer that appends every dispatched action and its
// outcome to the store's journal table.
package persist

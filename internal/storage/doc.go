// Package storage persists values across sessions.
//
// A Backend is durable key-value storage: FileBackend writes one JSON file per
// key with an atomic rename, SQLiteBackend keeps a kv table in a local
// database. A Hub joins the sessions that share a backend, and Persisted[T]
// is one session's view of a key. Writes are saved first, then broadcast to
// the hub's other sessions on that key. The last write wins.
//
// Values are encoded with sonic. Unreadable stored values fall back to the
// default passed to Open and are logged at warn level.
package storage

// Package store provides durable CRUD over task records.
//
// Three implementations of the same Store interface:
//
//   - SQLite: the primary store. WAL mode for concurrent reads, embedded
//     schema, PRAGMA user_version migrations, single-writer connection
//     limit to avoid SQLITE_BUSY.
//   - FileStore: a JSON-file fallback, the offline analog of the primary.
//   - Failover: wraps a primary and a fallback, classifies primary
//     failures as store-unavailable, transparently serves from the
//     fallback while retrying the primary opportunistically on each call.
//
// All queries use deterministic ordering (scheduled date, scheduled time,
// id) so repeated reads of the same data render identically.
//
// The copy-day operation (CopyDay) is defined over the Store interface:
// it clones one day's tasks onto another date with lifecycle flags reset.
package store

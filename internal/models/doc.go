// Package models defines the entities tbx reads from a board and the values it derives from them.
//
// The package contains three categories of types:
//
// 1. Snapshot entities, decoded from the board read endpoint and never persisted
//   - [Board] : one board with its lists, labels and visible cards
//   - [Card] : a card with its list membership and assigned labels
//   - [List] : a named column
//   - [Label] : a named or colored tag
//
// 2. Mutation intents, computed per card and discarded after execution
//   - [Mutation] : one of add-labels, copy-to-list, archive or delete
//
// 3. Journal entities, stored in SQLite when the run journal is enabled
//   - [Run] : the summary of one completed bulk operation
//   - [RunError] : one per-card failure recorded during a run
//
// Journal entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models

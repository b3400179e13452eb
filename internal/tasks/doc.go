// Package tasks plans and applies bulk card operations with real-time progress reporting.
//
// # Core Operations
//
// The [BulkRunner] interface defines three operations:
//
//  1. [BulkRunner.AddLabels] : add labels to every card of a board
//     - Resolves label names to ids, first match wins
//     - Writes the union of current and new label ids
//     - Skips cards that already carry every label
//
//  2. [BulkRunner.CopyCards] : copy every card to another board
//     - Maps each source list name to a target list, directly or through a mapping
//     - Skips lists with no target, reporting each once
//     - Preserves start, due, dueReminder and labels unless overridden
//
//  3. [BulkRunner.DeleteCardsByLabel] : archive or delete cards by label name
//     - Matches label names exactly, case-sensitive
//     - One action applies to the whole run
//
// Each operation is split into a prepare step returning a [Plan] and an apply step returning a [Result],
// so callers can review a plan before any write is made.
//
// # Execution
//
// [Executor] issues one write per mutation. Writes are sequential by default; a higher concurrency
// bound fans them out through an errgroup while errors stay in plan order. An optional rate limiter
// paces every write. Dry runs never call the writer.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks

// Package ui implements an interactive plan review using bubbletea's Elm architecture.
//
// The TUI walks one prepared [tasks.Plan] through four views:
//  1. [PlanView] : Browse the planned card mutations
//  2. [ConfirmView] : Confirm applying the plan (or previewing it in a dry run)
//  3. [ApplyView] : Monitor real-time progress updates
//  4. [ResultView] : Display counts, warnings and failed cards
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [Applier], providing non-blocking status reporting while writes run.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

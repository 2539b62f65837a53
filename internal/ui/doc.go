// Package ui contains the Bubble Tea program behind the user-agent popup.
// The Model type focuses on message orchestration while dedicated helpers own
// the catalog table, text input, commands, and rendering.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages. Each tea.Msg is
//     routed through a typed handler registry so it is handled by a focused
//     function (key presses, catalog results, command results, backend
//     updates). Anything unhandled is forwarded to the text inputs so cursor
//     blinking keeps working.
//   - Key presses for popup commands (apply, window, reset, test, copy, and
//     the browser/OS/sort controls) are matched first; everything else edits
//     whichever input has focus: the filter or the user-agent field.
//
// State ownership:
//   - The catalog table lives in internal/ui/state.Level, which tracks rows,
//     the filter, the cursor, the marked row, and the viewport.
//   - Persisted overrides are mirrored into internal/state stores by the
//     dispatcher so the field can follow writes from this or other processes.
//   - Side effects (preference writes, agent updates, clipboard) run through
//     the internal/ui/command bus so Update never blocks on I/O.
//
// Catalog loading:
//   - Every browser or OS change takes a new generation from a
//     catalog.Generation and starts an asynchronous load. When a result
//     arrives its generation is compared with the current one and stale
//     results are dropped, so only the latest selection is ever rendered.
//   - Changing the sort order re-sorts the rows already loaded.
package ui

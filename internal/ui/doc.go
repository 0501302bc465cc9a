// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one replace run:
//  1. [RangeView] : pick the top-tracks time range
//  2. [PreviewView] : browse the top tracks that will become liked songs
//  3. [ConfirmView] : confirm the destructive replace
//  4. [ReplaceView] : follow live progress while liked songs are cleared and re-added
//  5. [ResultView] : removed and added counts, or the failure
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the [tasks.LibraryEngine], providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

// Package ui renders terminal output with lipgloss.
//
// [Palette] holds the named styles; [ChartListing] formats a parsed chart for print mode
// and [PlaylistSummary] reports what a playlist run added and skipped.
//
// lipgloss drops colors when stdout is not a terminal, so piped output stays plain text.
package ui

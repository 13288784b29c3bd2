// Package ui formats wishtrack command output for the terminal.
//
// Colors come from a named Theme (Nightfox, Kanagawa, Slate) rendered through
// lipgloss. When stdout is not a terminal lipgloss drops the escape codes, so
// output stays readable in pipes and logs.
//
//   - theme.go: palettes, Styles, state and rarity colors
//   - render.go: Renderer for job status, start-import results, providers,
//     the reference-data index and wish lists
package ui

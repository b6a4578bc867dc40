// Package ui styles CLI output with lipgloss.
//
// [Styles] is the shared [Palette]: titles, success and error markers, warnings and help text, plus
// [Palette.KeyValues] and [Palette.Table] for aligned listings.
package ui

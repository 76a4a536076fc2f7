package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/total70/journal-ai/internal/llm"
)

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleLabel     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleMuted     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleKey       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	styleStatusOK  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleStatusErr = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleWarn      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// RenderPreview formats a generated entry for the terminal.
func RenderPreview(res llm.Result) string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("=== Preview ===") + "\n")
	b.WriteString(styleLabel.Render("Title:") + " " + res.Title + "\n")
	b.WriteString(styleLabel.Render("Content:") + " " + res.Content + "\n")
	if len(res.Tags) > 0 {
		b.WriteString(styleLabel.Render("Tags:") + " " + strings.Join(res.Tags, ", ") + "\n")
	}
	return b.String()
}

// Check renders a doctor line with a ✓ or ✗ marker.
func Check(ok bool, msg string) string {
	if ok {
		return styleStatusOK.Render("✓") + " " + msg
	}
	return styleStatusErr.Render("✗") + " " + msg
}

// Detail renders an indented secondary doctor line.
func Detail(label, value string) string {
	return "  " + styleMuted.Render(label+":") + " " + value
}

// Hint renders an indented suggestion.
func Hint(msg string) string {
	return "  " + styleWarn.Render(msg)
}

// Header renders a bold heading.
func Header(msg string) string {
	return styleHeader.Render(msg)
}

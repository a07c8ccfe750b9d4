package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	// Color definitions for terminal output
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	dimColor     = color.New(color.Faint)
)

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(w io.Writer, format string, args ...any) {
	errorColor.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, format string, args ...any) {
	warningColor.Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// PrintDim prints secondary text without a trailing newline.
func PrintDim(w io.Writer, format string, args ...any) {
	dimColor.Fprintf(w, format, args...)
}

// PrintPromptBanner prints the welcome banner for the question prompt.
func PrintPromptBanner(w io.Writer, server string) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		Align(lipgloss.Center).
		Width(56)

	body := titleStyle.Render("💬  Ask anything") + "\n" +
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Align(lipgloss.Center).Width(56).
			Render(fmt.Sprintf("server %s • type bye to exit", server))

	fmt.Fprintln(w, Styles.Banner.Render(body))
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	appErrors "appsnap/internal/errors"
)

var (
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#FF79C6")
	dimColor       = lipgloss.Color("#6272A4")
	successColor   = lipgloss.Color("#50FA7B")
	errorColor     = lipgloss.Color("#FF5555")
)

var (
	appStyle     = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	spinnerStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	dimStyle     = lipgloss.NewStyle().Foreground(dimColor)
	okStyle      = lipgloss.NewStyle().Foreground(successColor)
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
)

// errorHints suggest a next step for structured errors.
var errorHints = map[appErrors.Code]string{
	appErrors.CodeConfigurationError: "Check the catalog path (--catalog) and ~/.appsnap/config.yaml.",
	appErrors.CodeNotFound:           "Run 'appsnap check' to list catalog packages.",
	appErrors.CodeStoreError:         "Check the database path (--db-path) is writable.",
	appErrors.CodeRegistryError:      "Uninstall metadata could not be read; try an elevated shell.",
}

func printError(w io.Writer, err error) {
	msg := err.Error()
	if cause := causeOf(err); cause != "" && !strings.Contains(msg, cause) {
		msg += ": " + cause
	}
	_, _ = fmt.Fprintln(w, failStyle.Render("Error:")+" "+msg)
	if hint, ok := errorHints[appErrors.CodeOf(err)]; ok {
		_, _ = fmt.Fprintln(w, dimStyle.Render(hint))
	}
}

// causeOf returns the message of the error wrapped by a structured error.
func causeOf(err error) string {
	var structured appErrors.Error
	if !errors.As(err, &structured) || structured.Err == nil {
		return ""
	}
	return structured.Err.Error()
}

// markdownWidth is the wrap width for rendered package descriptions.
const markdownWidth = 80

// buildMarkdownRenderer returns a renderer for package descriptions. Plain
// output is word wrapped markdown source.
func buildMarkdownRenderer(interactive bool, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}
	if !interactive || termenv.EnvNoColor() {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}

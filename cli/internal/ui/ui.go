// Package ui provides the terminal output helpers shared by the commands.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	primaryColor   = lipgloss.Color("#7C6FF0")
	successColor   = lipgloss.Color("#00C98D")
	warningColor   = lipgloss.Color("#FFB454")
	errorColor     = lipgloss.Color("#FF5C5C")
	secondaryColor = lipgloss.Color("#8A8F98")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)
)

// PrintHeader prints the command banner.
func PrintHeader(title, subtitle string) {
	header := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(0, 2).
		Render(titleStyle.Render(title) + "  " + secondaryStyle.Render(subtitle))
	fmt.Println(header)
	fmt.Println()
}

// PrintSuccess prints a success line.
func PrintSuccess(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintError prints an error line to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning line.
func PrintWarning(format string, args ...any) {
	fmt.Println(warningStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

// PrintInfo prints an informational line.
func PrintInfo(format string, args ...any) {
	fmt.Println(secondaryStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintTable prints a table with a header row.
func PrintTable(headers []string, rows [][]string) {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// Spinner starts a spinner with the given text; callers must Stop it.
func Spinner(text string) *pterm.SpinnerPrinter {
	spinner, _ := pterm.DefaultSpinner.WithText(text).Start()
	return spinner
}

// PrintMarkdown renders markdown to the terminal.
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(content)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// Colored returns a fatih/color printer for ad-hoc colored output.
func Colored(attrs ...color.Attribute) *color.Color {
	return color.New(attrs...)
}

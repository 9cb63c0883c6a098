package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/moznion/go-optional"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)
)

// FormatCloseWithTrend formats a close with a direction marker against the
// previous row's close. Missing cells render empty.
func FormatCloseWithTrend(current, previous optional.Option[float64]) string {
	if current.IsNone() {
		return ""
	}

	valueStr := fmt.Sprintf("%.2f", current.Unwrap())

	if previous.IsNone() {
		return valueStr
	}

	if current.Unwrap() > previous.Unwrap() {
		return valueStr + " ▲"
	} else if current.Unwrap() < previous.Unwrap() {
		return valueStr + " ▼"
	}

	return valueStr
}

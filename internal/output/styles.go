package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Use these instead of inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: recipe and system names.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for added entries and passing checks.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for retargeted names and warnings.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for removed entries.
	ColorRed = lipgloss.Color("196")

	// ColorBoldRed is used for failed checks.
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")
)

// Semantic styles.
var (
	// StyleNoun styles recipe and system names.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleDim styles structural chrome such as digests and separators.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Entry status values used by list, vet and diff output.
const (
	StatusAdded      = "added"
	StatusRemoved    = "removed"
	StatusRetargeted = "retargeted"
	StatusUnchanged  = "unchanged"
	StatusValid      = "valid"
	StatusInvalid    = "invalid"
)

// StatusStyle returns the style for an entry status. Unknown statuses are
// unstyled.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusAdded, StatusValid:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusRetargeted:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusUnchanged:
		return lipgloss.NewStyle().Faint(true)
	case StatusRemoved:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case StatusInvalid:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minNameColumnWidth keeps status words aligned across lines.
const minNameColumnWidth = 32

// FormatIdentity renders name@digest with the name highlighted and the
// digest dimmed. Strings without '@' are rendered as a name.
func FormatIdentity(identity string) string {
	i := strings.LastIndex(identity, "@")
	if i < 0 {
		return StyleNoun.Render(identity)
	}
	return StyleNoun.Render(identity[:i]) + StyleDim.Render(identity[i:])
}

// FormatEntryLine renders a name with a right-aligned, color-coded status.
func FormatEntryLine(name, status string) string {
	padding := minNameColumnWidth - len(name)
	if padding < 2 {
		padding = 2
	}
	return StyleNoun.Render(name) + strings.Repeat(" ", padding) + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark followed by msg.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

package ui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary    = lipgloss.Color("#00BFFF") // headings, critical path
	colorAccent     = lipgloss.Color("#FFD700") // shifts, warnings
	colorSuccess    = lipgloss.Color("#00E676") // completed
	colorDanger     = lipgloss.Color("#FF5252") // errors, overdue
	colorMuted      = lipgloss.Color("#636363") // de-emphasized
	colorMutedLight = lipgloss.Color("#8C8C8C") // normal text
	colorBlue       = lipgloss.Color("#5B8DEF") // in progress
)

// Status icons.
const (
	iconDone      = "✓"
	iconWorking   = "◎"
	iconWaiting   = "·"
	iconHold      = "⊘"
	iconCancelled = "–"
	iconCritical  = "★"
	iconError     = "✗"
)

// styles is the set of styles a Printer renders with. With color disabled
// every style is empty and text passes through untouched.
type styles struct {
	title    lipgloss.Style
	dim      lipgloss.Style
	normal   lipgloss.Style
	done     lipgloss.Style
	working  lipgloss.Style
	waiting  lipgloss.Style
	danger   lipgloss.Style
	accent   lipgloss.Style
	critical lipgloss.Style
	barFull  lipgloss.Style
	barEmpty lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			title: plain, dim: plain, normal: plain, done: plain, working: plain,
			waiting: plain, danger: plain, accent: plain, critical: plain,
			barFull: plain, barEmpty: plain,
		}
	}
	return styles{
		title: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true),
		dim: lipgloss.NewStyle().
			Foreground(colorMuted),
		normal: lipgloss.NewStyle().
			Foreground(colorMutedLight),
		done: lipgloss.NewStyle().
			Foreground(colorSuccess),
		working: lipgloss.NewStyle().
			Foreground(colorBlue),
		waiting: lipgloss.NewStyle().
			Foreground(colorMuted),
		danger: lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true),
		accent: lipgloss.NewStyle().
			Foreground(colorAccent),
		critical: lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true),
		barFull: lipgloss.NewStyle().
			Foreground(colorSuccess),
		barEmpty: lipgloss.NewStyle().
			Foreground(colorMuted),
	}
}

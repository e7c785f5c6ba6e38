package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title          lipgloss.Style
	Confirm        lipgloss.Style
	Popup          lipgloss.Style
	Dim            lipgloss.Style
	Status         lipgloss.Style
	LogBox         lipgloss.Style
	Label          lipgloss.Style
	Help           lipgloss.Style
	Main           lipgloss.Style
	Highlight      lipgloss.Style
	SelectionBg    lipgloss.Style
	StatusError    lipgloss.Style
	StatusWarning  lipgloss.Style
	StatusSuccess  lipgloss.Style
	StatusProgress lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Confirm: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 2),
		Dim: lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		LogBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("241")),
		Label:          lipgloss.NewStyle().Bold(true).MarginTop(1),
		Help:           lipgloss.NewStyle().Faint(true),
		Main:           lipgloss.NewStyle().Padding(1, 2),
		Highlight:      lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		SelectionBg:    lipgloss.NewStyle().Background(lipgloss.Color("238")),
		StatusError:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusSuccess:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		StatusProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
	}
}

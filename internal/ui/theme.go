package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SoloCraft theme (CLI + TUI).

const (
	IconMission = "⚔️"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconFailed  = "💀"
	IconTrophy  = "🏆"
	IconTicket  = "🎟️"
	IconDebt    = "📝"
	IconProject = "📦"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// StatusText colors a mission status name.
func StatusText(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		return Good.Render("completed")
	case "active":
		return H2.Render("active")
	case "failed":
		return Bad.Render("failed")
	default:
		return Muted.Render(status)
	}
}

func StatusIcon(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed":
		return IconDone
	case "failed":
		return IconFailed
	default:
		return IconMission
	}
}

func DifficultyText(d string) string {
	switch strings.ToLower(d) {
	case "easy":
		return Good.Render(d)
	case "medium":
		return Warn.Render(d)
	case "hard":
		return Bad.Render(d)
	default:
		return Muted.Render(d)
	}
}

// TicketCount renders a remaining balance, red when empty.
func TicketCount(n int) string {
	if n <= 0 {
		return Bad.Render("0")
	}
	return Good.Render(fmt.Sprint(n))
}

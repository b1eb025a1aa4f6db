package engine

import (
	"time"

	"solocraft/internal/storage"
)

// TicketResetInterval is the weekly quota period.
const TicketResetInterval = 7 * 24 * time.Hour

// ShouldResetTickets reports whether a full period has elapsed since last.
func ShouldResetTickets(last, now time.Time) bool {
	return now.Sub(last) >= TicketResetInterval
}

// ResetProgressTickets refills the global balances to the configured limits.
func ResetProgressTickets(p *storage.UserProgress, limits storage.TicketLimits, now time.Time) {
	p.HelpTickets = limits.Help
	p.TutorialTickets = limits.Tutorial
	p.LastTicketReset = now
}

// ResetProjectTickets zeroes the project's usage counters.
func ResetProjectTickets(p *storage.Project, now time.Time) {
	p.HelpTicketsUsed = 0
	p.TutorialTicketsUsed = 0
	p.LastTicketReset = now
}

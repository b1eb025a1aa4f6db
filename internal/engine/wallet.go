package engine

import "solocraft/internal/storage"

// Wallet is the ticket balance of one scope: the global progress or a
// project.
type Wallet interface {
	Remaining(t TicketType) int
	// Spend takes one ticket and reports false when none is left.
	Spend(t TicketType) bool
}

type progressWallet struct {
	p *storage.UserProgress
}

// ProgressWallet spends from the absolute balances on the global progress.
func ProgressWallet(p *storage.UserProgress) Wallet {
	return progressWallet{p: p}
}

func (w progressWallet) Remaining(t TicketType) int {
	switch t {
	case TicketHelp:
		return max(0, w.p.HelpTickets)
	case TicketTutorial:
		return max(0, w.p.TutorialTickets)
	default:
		return 0
	}
}

func (w progressWallet) Spend(t TicketType) bool {
	if w.Remaining(t) <= 0 {
		return false
	}
	switch t {
	case TicketHelp:
		w.p.HelpTickets--
	case TicketTutorial:
		w.p.TutorialTickets--
	}
	return true
}

type projectWallet struct {
	p *storage.Project
}

// ProjectWallet spends by counting usage against the project's limits.
func ProjectWallet(p *storage.Project) Wallet {
	return projectWallet{p: p}
}

func (w projectWallet) Remaining(t TicketType) int {
	return ProjectRemaining(*w.p, t)
}

func (w projectWallet) Spend(t TicketType) bool {
	if w.Remaining(t) <= 0 {
		return false
	}
	switch t {
	case TicketHelp:
		w.p.HelpTicketsUsed++
	case TicketTutorial:
		w.p.TutorialTicketsUsed++
	}
	return true
}

// ProjectRemaining is max(0, limit-used) for the given ticket type.
func ProjectRemaining(p storage.Project, t TicketType) int {
	switch t {
	case TicketHelp:
		return max(0, p.HelpTicketLimit-p.HelpTicketsUsed)
	case TicketTutorial:
		return max(0, p.TutorialTicketLimit-p.TutorialTicketsUsed)
	default:
		return 0
	}
}

// UseTicket spends one ticket of type t, or fails with an InvalidStateError
// when the balance is exhausted. The wallet is untouched on failure.
func UseTicket(w Wallet, t TicketType) error {
	if !t.IsValid() {
		return ValidationError{Field: "ticket type", Reason: "must be help or tutorial"}
	}
	if !w.Spend(t) {
		return InvalidStateError{Kind: "ticket", Reason: "No " + t.Keyword() + " tickets remaining"}
	}
	return nil
}

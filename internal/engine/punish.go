package engine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"solocraft/internal/storage"
)

const (
	// DefaultXPPunishment applies when the text mentions XP without a number.
	DefaultXPPunishment = 10
	// FallbackXPPunishment applies when no other rule produced an effect.
	FallbackXPPunishment = 5
)

var xpAmountPattern = regexp.MustCompile(`(\d+)\s*xp`)

// punishment is the working state one ApplyPunishment call threads through
// its rules.
type punishment struct {
	text     string
	progress *storage.UserProgress
	wallet   Wallet
	effects  []string
}

func (p *punishment) report(format string, args ...any) {
	p.effects = append(p.effects, fmt.Sprintf(format, args...))
}

type punishmentRule struct {
	name    string
	applies func(text string) bool
	apply   func(p *punishment)
}

// punishmentRules run in order; the effect list keeps that order.
var punishmentRules = []punishmentRule{
	{
		name: "xp",
		applies: func(text string) bool {
			return strings.Contains(text, "xp") || strings.Contains(text, "experience")
		},
		apply: applyXPLoss,
	},
	{
		name: "ticket",
		applies: func(text string) bool {
			return strings.Contains(text, "ticket")
		},
		apply: applyTicketLoss,
	},
}

// ApplyPunishment interprets free punishment text against the progress (XP)
// and the wallet (tickets) and returns human-readable effects. Matching is
// case-insensitive. Empty text has no effect; text no rule understands costs
// FallbackXPPunishment XP. A nil wallet spends from the progress itself.
func ApplyPunishment(progress *storage.UserProgress, wallet Wallet, text string) []string {
	effects := []string{}
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return effects
	}
	if wallet == nil {
		wallet = ProgressWallet(progress)
	}

	p := &punishment{text: text, progress: progress, wallet: wallet, effects: effects}
	for _, rule := range punishmentRules {
		if rule.applies(text) {
			rule.apply(p)
		}
	}
	if len(p.effects) == 0 {
		lost := removeXP(progress, FallbackXPPunishment)
		p.report("Lost %d XP (default punishment)", lost)
	}
	return p.effects
}

func applyXPLoss(p *punishment) {
	loss := DefaultXPPunishment
	if m := xpAmountPattern.FindStringSubmatch(p.text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// Only overflow gets here; it takes everything.
			n = math.MaxInt
		}
		loss = n
	}

	lost := removeXP(p.progress, loss)
	newLevel := max(1, LevelForXP(p.progress.XP))
	if newLevel < p.progress.Level {
		p.progress.Level = newLevel
		p.report("Lost %d XP and dropped to Level %d", lost, newLevel)
		return
	}
	p.report("Lost %d XP", lost)
}

func applyTicketLoss(p *punishment) {
	spent := 0
	for _, t := range ticketTypes {
		if strings.Contains(p.text, t.Keyword()) && p.wallet.Spend(t) {
			spent++
			p.report("Lost 1 %s ticket", t.Keyword())
		}
	}
	if spent > 0 {
		return
	}
	// The text says "ticket" without naming a type that could pay: take one
	// of whatever is left, help first.
	for _, t := range ticketTypes {
		if p.wallet.Spend(t) {
			p.report("Lost 1 %s ticket", t.Keyword())
			return
		}
	}
}

package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"solocraft/internal/storage"
)

var t0 = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func newProgress(xp int) storage.UserProgress {
	p := storage.NewUserProgress(storage.DefaultTicketLimits(), t0)
	p.XP = xp
	p.Level = LevelForXP(xp)
	return p
}

func strPtr(s string) *string { return &s }

func TestLevelBoundaries(t *testing.T) {
	cases := map[int]int{0: 1, 99: 1, 100: 2, 199: 2, 200: 3, 1050: 11}
	for xp, want := range cases {
		if got := LevelForXP(xp); got != want {
			t.Fatalf("LevelForXP(%d)=%d, want %d", xp, got, want)
		}
	}
	if got := XPForLevel(3); got != 200 {
		t.Fatalf("XPForLevel(3)=%d, want 200", got)
	}
}

func TestAddXPLevelFormula(t *testing.T) {
	for x := 0; x <= 450; x += 37 {
		for _, a := range []int{0, 1, 63, 100, 250} {
			p := newProgress(x)
			prior := p.Level
			levelUp := AddXP(&p, a)

			want := (x+a)/100 + 1
			if p.Level != want {
				t.Fatalf("x=%d a=%d: level=%d, want %d", x, a, p.Level, want)
			}
			if levelUp != (want > prior) {
				t.Fatalf("x=%d a=%d: levelUp=%v, prior=%d new=%d", x, a, levelUp, prior, want)
			}
		}
	}
}

func TestAddXPNeverLowersLaggingLevel(t *testing.T) {
	p := newProgress(40)
	p.Level = 4
	if AddXP(&p, 30) {
		t.Fatalf("expected no level-up while level is ahead of xp")
	}
	if p.Level != 4 {
		t.Fatalf("level=%d, want 4", p.Level)
	}
}

func TestCompleteMission(t *testing.T) {
	m := storage.NewMission("m1", "Run 5k", string(DifficultyMedium), 120, t0)
	p := newProgress(90)

	res, err := CompleteMission(&m, &p, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("CompleteMission: %v", err)
	}
	if !res.LevelUp || res.NewLevel != 3 || res.XP != 120 {
		t.Fatalf("result=%+v, want levelUp to 3 with 120 xp", res)
	}
	if !m.Completed || m.CompletedAt == nil || m.Failed {
		t.Fatalf("mission not marked completed: %+v", m)
	}

	_, err = CompleteMission(&m, &p, t0.Add(2*time.Hour))
	var ise InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("second completion err=%v, want InvalidStateError", err)
	}
	if p.XP != 210 {
		t.Fatalf("xp=%d after second completion, want 210", p.XP)
	}
}

func TestCompleteFailedMissionIsRejected(t *testing.T) {
	m := storage.NewMission("m1", "x", string(DifficultyEasy), 10, t0)
	m.Failed = true
	p := newProgress(0)
	before := p

	if _, err := CompleteMission(&m, &p, t0); Classify(err) != KindInvalidState {
		t.Fatalf("err=%v, want invalid state", err)
	}
	if m.Completed || !reflect.DeepEqual(p, before) {
		t.Fatalf("state changed on rejected completion")
	}
}

func TestFailMissionAppliesPunishment(t *testing.T) {
	m := storage.NewMission("m1", "Skip sugar", string(DifficultyHard), 50, t0)
	m.Punishment = strPtr("Lose 25 XP")
	p := newProgress(110)

	res, err := FailMission(&m, &p, nil, t0)
	if err != nil {
		t.Fatalf("FailMission: %v", err)
	}
	want := []string{"Lost 25 XP and dropped to Level 1"}
	if !reflect.DeepEqual(res.Effects, want) {
		t.Fatalf("effects=%v, want %v", res.Effects, want)
	}
	if !m.Failed || m.FailedAt == nil {
		t.Fatalf("mission not marked failed")
	}
	if _, err := FailMission(&m, &p, nil, t0); Classify(err) != KindInvalidState {
		t.Fatalf("second fail err=%v, want invalid state", err)
	}
	if p.XP != 85 {
		t.Fatalf("xp=%d, want 85", p.XP)
	}
}

func TestApplyPunishment(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		xp       int
		help     int
		tutorial int

		wantXP       int
		wantLevel    int
		wantHelp     int
		wantTutorial int
		wantEffects  []string
	}{
		{
			name: "explicit xp", text: "Lose 10 XP", xp: 50, help: 3, tutorial: 2,
			wantXP: 40, wantLevel: 1, wantHelp: 3, wantTutorial: 2,
			wantEffects: []string{"Lost 10 XP"},
		},
		{
			name: "xp without number", text: "lose some experience", xp: 105, help: 3, tutorial: 2,
			wantXP: 95, wantLevel: 1, wantHelp: 3, wantTutorial: 2,
			wantEffects: []string{"Lost 10 XP and dropped to Level 1"},
		},
		{
			name: "xp floors at zero", text: "-500xp", xp: 30, help: 3, tutorial: 2,
			wantXP: 0, wantLevel: 1, wantHelp: 3, wantTutorial: 2,
			wantEffects: []string{"Lost 30 XP"},
		},
		{
			name: "help ticket", text: "Lose a help ticket", xp: 0, help: 2, tutorial: 2,
			wantXP: 0, wantLevel: 1, wantHelp: 1, wantTutorial: 2,
			wantEffects: []string{"Lost 1 help ticket"},
		},
		{
			name: "both ticket types", text: "no help or tutorial tickets", xp: 0, help: 1, tutorial: 1,
			wantXP: 0, wantLevel: 1, wantHelp: 0, wantTutorial: 0,
			wantEffects: []string{"Lost 1 help ticket", "Lost 1 tutorial ticket"},
		},
		{
			name: "fallback prefers help", text: "forfeit a ticket", xp: 0, help: 1, tutorial: 1,
			wantXP: 0, wantLevel: 1, wantHelp: 0, wantTutorial: 1,
			wantEffects: []string{"Lost 1 help ticket"},
		},
		{
			name: "fallback when named type is empty", text: "lose a help ticket", xp: 0, help: 0, tutorial: 2,
			wantXP: 0, wantLevel: 1, wantHelp: 0, wantTutorial: 1,
			wantEffects: []string{"Lost 1 tutorial ticket"},
		},
		{
			name: "tickets exhausted falls to default", text: "lose a ticket", xp: 20, help: 0, tutorial: 0,
			wantXP: 15, wantLevel: 1, wantHelp: 0, wantTutorial: 0,
			wantEffects: []string{"Lost 5 XP (default punishment)"},
		},
		{
			name: "xp and ticket keep rule order", text: "Ticket gone and 15xp", xp: 100, help: 1, tutorial: 0,
			wantXP: 85, wantLevel: 1, wantHelp: 0, wantTutorial: 0,
			wantEffects: []string{"Lost 15 XP and dropped to Level 1", "Lost 1 help ticket"},
		},
		{
			name: "default punishment", text: "be more careful", xp: 20, help: 3, tutorial: 2,
			wantXP: 15, wantLevel: 1, wantHelp: 3, wantTutorial: 2,
			wantEffects: []string{"Lost 5 XP (default punishment)"},
		},
		{
			name: "default at zero xp", text: "think about it", xp: 2, help: 3, tutorial: 2,
			wantXP: 0, wantLevel: 1, wantHelp: 3, wantTutorial: 2,
			wantEffects: []string{"Lost 2 XP (default punishment)"},
		},
		{
			name: "empty text", text: "", xp: 20, help: 3, tutorial: 2,
			wantXP: 20, wantLevel: 1, wantHelp: 3, wantTutorial: 2,
			wantEffects: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newProgress(tc.xp)
			p.HelpTickets = tc.help
			p.TutorialTickets = tc.tutorial

			got := ApplyPunishment(&p, nil, tc.text)
			if !reflect.DeepEqual(got, tc.wantEffects) {
				t.Fatalf("effects=%q, want %q", got, tc.wantEffects)
			}
			if p.XP != tc.wantXP || p.Level != tc.wantLevel {
				t.Fatalf("xp=%d level=%d, want xp=%d level=%d", p.XP, p.Level, tc.wantXP, tc.wantLevel)
			}
			if p.HelpTickets != tc.wantHelp || p.TutorialTickets != tc.wantTutorial {
				t.Fatalf("tickets=%d/%d, want %d/%d", p.HelpTickets, p.TutorialTickets, tc.wantHelp, tc.wantTutorial)
			}
		})
	}
}

func TestDefaultPunishmentKeepsLevel(t *testing.T) {
	p := newProgress(102)
	ApplyPunishment(&p, nil, "be more careful")
	if p.XP != 97 || p.Level != 2 {
		t.Fatalf("xp=%d level=%d, want 97 and an unchanged level 2", p.XP, p.Level)
	}
}

func TestApplyPunishmentUsesProjectWallet(t *testing.T) {
	p := newProgress(0)
	proj := storage.NewProject("p1", "Thesis", storage.TicketLimits{Help: 1, Tutorial: 1}, t0)

	got := ApplyPunishment(&p, ProjectWallet(&proj), "lose a tutorial ticket")
	if !reflect.DeepEqual(got, []string{"Lost 1 tutorial ticket"}) {
		t.Fatalf("effects=%v", got)
	}
	if proj.TutorialTicketsUsed != 1 || p.TutorialTickets != 2 {
		t.Fatalf("project used=%d global=%d, want 1 and untouched 2", proj.TutorialTicketsUsed, p.TutorialTickets)
	}
}

func TestUseTicket(t *testing.T) {
	p := newProgress(0)
	p.HelpTickets = 1
	w := ProgressWallet(&p)

	if err := UseTicket(w, TicketHelp); err != nil {
		t.Fatalf("first UseTicket: %v", err)
	}
	err := UseTicket(w, TicketHelp)
	if Classify(err) != KindInvalidState || err.Error() != "No help tickets remaining" {
		t.Fatalf("err=%v, want quota exhausted", err)
	}
	if p.HelpTickets != 0 {
		t.Fatalf("help tickets=%d, want 0", p.HelpTickets)
	}

	proj := storage.NewProject("p", "x", storage.TicketLimits{Help: 2, Tutorial: 0}, t0)
	pw := ProjectWallet(&proj)
	if err := UseTicket(pw, TicketTutorial); Classify(err) != KindInvalidState {
		t.Fatalf("tutorial on zero limit err=%v", err)
	}
	if err := UseTicket(pw, TicketHelp); err != nil {
		t.Fatalf("project help: %v", err)
	}
	if got := ProjectRemaining(proj, TicketHelp); got != 1 {
		t.Fatalf("remaining=%d, want 1", got)
	}
}

func TestProjectRemainingNeverNegative(t *testing.T) {
	proj := storage.NewProject("p", "x", storage.TicketLimits{Help: 3, Tutorial: 2}, t0)
	proj.HelpTicketsUsed = 3
	proj.HelpTicketLimit = 1
	if got := ProjectRemaining(proj, TicketHelp); got != 0 {
		t.Fatalf("remaining=%d, want 0", got)
	}
}

func TestClearDebtIsOneWay(t *testing.T) {
	d := storage.NewInsightDebt("d1", string(TicketHelp), "closures", t0)

	if err := ClearDebt(&d, "  capture by reference  ", t0.Add(time.Minute)); err != nil {
		t.Fatalf("ClearDebt: %v", err)
	}
	err := ClearDebt(&d, "second thoughts", t0.Add(2*time.Minute))
	var ace AlreadyClearedError
	if !errors.As(err, &ace) {
		t.Fatalf("err=%v, want AlreadyClearedError", err)
	}
	if d.InsightEntry == nil || *d.InsightEntry != "capture by reference" {
		t.Fatalf("insight=%v, want first text preserved", d.InsightEntry)
	}
	if d.ClearedAt == nil || !d.ClearedAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("clearedAt=%v", d.ClearedAt)
	}
}

func TestClearDebtRequiresText(t *testing.T) {
	d := storage.NewInsightDebt("d1", string(TicketTutorial), "x", t0)
	if err := ClearDebt(&d, "   ", t0); Classify(err) != KindValidation {
		t.Fatalf("err=%v, want validation", err)
	}
	if d.Cleared || d.InsightEntry != nil || d.ClearedAt != nil {
		t.Fatalf("debt mutated on failed clear: %+v", d)
	}
}

func TestShouldResetTickets(t *testing.T) {
	last := t0
	if ShouldResetTickets(last, last.Add(6*24*time.Hour+23*time.Hour+59*time.Minute+59*time.Second)) {
		t.Fatalf("reset at 6d23:59:59")
	}
	if !ShouldResetTickets(last, last.Add(7*24*time.Hour)) {
		t.Fatalf("no reset at exactly 7 days")
	}
	if !ShouldResetTickets(last, last.Add(30*24*time.Hour)) {
		t.Fatalf("no reset after 30 days")
	}
}

func TestResetTickets(t *testing.T) {
	p := newProgress(0)
	p.HelpTickets, p.TutorialTickets = 0, 1
	now := t0.Add(8 * 24 * time.Hour)
	ResetProgressTickets(&p, storage.TicketLimits{Help: 4, Tutorial: 3}, now)
	if p.HelpTickets != 4 || p.TutorialTickets != 3 || !p.LastTicketReset.Equal(now) {
		t.Fatalf("progress after reset: %+v", p)
	}

	proj := storage.NewProject("p", "x", storage.DefaultTicketLimits(), t0)
	proj.HelpTicketsUsed, proj.TutorialTicketsUsed = 3, 2
	ResetProjectTickets(&proj, now)
	if proj.HelpTicketsUsed != 0 || proj.TutorialTicketsUsed != 0 || !proj.LastTicketReset.Equal(now) {
		t.Fatalf("project after reset: %+v", proj)
	}
}

func TestParsers(t *testing.T) {
	if d, err := ParseDifficulty(" HARD "); err != nil || d != DifficultyHard {
		t.Fatalf("ParseDifficulty=%q, %v", d, err)
	}
	if _, err := ParseDifficulty("legendary"); Classify(err) != KindValidation {
		t.Fatalf("ParseDifficulty(legendary) err=%v", err)
	}
	if tt, err := ParseTicketType("Tutorial"); err != nil || tt != TicketTutorial {
		t.Fatalf("ParseTicketType=%q, %v", tt, err)
	}
	if s, err := ParseMissionStatus("all"); err != nil || s != MissionAll {
		t.Fatalf("ParseMissionStatus(all)=%q, %v", s, err)
	}
}

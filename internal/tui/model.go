package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"solocraft/internal/engine"
	"solocraft/internal/storage"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	progress *engine.ProgressView
	missions []storage.Mission
	debts    []storage.InsightDebt

	showAll  bool
	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	progress *engine.ProgressView
	missions []storage.Mission
	debts    []storage.InsightDebt
	err      error
}

type completedMsg struct {
	title string
	res   *engine.CompleteResult
	err   error
}

type failedMsg struct {
	title string
	res   *engine.FailResult
	err   error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	status := engine.MissionActive
	if m.showAll {
		status = engine.MissionAll
	}
	return func() tea.Msg {
		p, err := m.svc.GetUserProgress(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		missions, err := m.svc.ListMissions(m.ctx, engine.MissionFilter{Status: status})
		if err != nil {
			return loadedMsg{err: err}
		}
		debts, err := m.svc.ActiveDebts(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{progress: p, missions: missions, debts: debts}
	}
}

func (m boardModel) completeCmd(ms storage.Mission) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteMission(m.ctx, ms.ID)
		return completedMsg{title: ms.Title, res: res, err: err}
	}
}

func (m boardModel) failCmd(ms storage.Mission) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.FailMission(m.ctx, ms.ID)
		return failedMsg{title: ms.Title, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.progress = msg.progress
		m.missions = msg.missions
		m.debts = msg.debts
		m.clampSelection()
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Completed %q: +%d XP", msg.title, msg.res.XP)
		if msg.res.LevelUp {
			m.lastLog += fmt.Sprintf(" (level %d → %d)", msg.res.LevelBefore, msg.res.NewLevel)
		}
		return m, m.loadCmd()
	case failedMsg:
		if msg.err != nil {
			m.lastLog = "Fail failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Failed %q", msg.title)
		if len(msg.res.Effects) > 0 {
			m.lastLog += ": " + strings.Join(msg.res.Effects, "; ")
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "a":
			m.showAll = !m.showAll
			m.loading = true
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.missions)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ":
			ms, ok := m.selectedActive()
			if !ok {
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %q…", ms.Title)
			return m, m.completeCmd(ms)
		case "f":
			ms, ok := m.selectedActive()
			if !ok {
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Failing %q…", ms.Title)
			return m, m.failCmd(ms)
		}
	}
	return m, nil
}

// selectedActive returns the mission under the cursor if it can still change
// state, and explains in the log why not otherwise.
func (m *boardModel) selectedActive() (storage.Mission, bool) {
	if m.selected < 0 || m.selected >= len(m.missions) {
		m.lastLog = "No mission selected."
		return storage.Mission{}, false
	}
	ms := m.missions[m.selected]
	if !ms.IsActive() {
		m.lastLog = "Mission is already " + string(engine.StatusOf(ms)) + "."
		return storage.Mission{}, false
	}
	return ms, true
}

func (m *boardModel) clampSelection() {
	if m.selected >= len(m.missions) {
		m.selected = len(m.missions) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	// Simple 2-column layout.
	leftW := 30
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.progress == nil {
		return "SoloCraft — loading…"
	}
	p := m.progress
	cur := engine.XPForLevel(p.Level)
	bar := progressBar(p.XP-cur, p.NextLevelXP-cur, 30)
	scope := "global"
	if p.ProjectID != nil {
		scope = p.ProjectName
	}
	return fmt.Sprintf("SoloCraft | Level %d | XP %d %s | Scope: %s", p.Level, p.XP, bar, scope)
}

func (m boardModel) renderSidebar() string {
	if m.progress == nil {
		return "Tickets\n\nLoading…"
	}
	lines := []string{"Tickets"}
	lines = append(lines, fmt.Sprintf("- help: %d", m.progress.HelpTickets))
	lines = append(lines, fmt.Sprintf("- tutorial: %d", m.progress.TutorialTickets))
	next := m.progress.LastTicketReset.Add(engine.TicketResetInterval)
	lines = append(lines, "- refill: "+next.Local().Format("Mon Jan 2"))
	lines = append(lines, "")

	lines = append(lines, fmt.Sprintf("Insight debts (%d)", len(m.debts)))
	if len(m.debts) == 0 {
		lines = append(lines, "(none owed)")
	}
	for _, d := range m.debts {
		lines = append(lines, fmt.Sprintf("- [%s] %s", d.TicketType, d.UsedFor))
	}
	lines = append(lines, "")

	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- c/space: complete")
	lines = append(lines, "- f: fail")
	lines = append(lines, "- a: toggle all/active")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	title := "Active missions"
	if m.showAll {
		title = "All missions"
	}
	out := []string{title}
	if len(m.missions) == 0 {
		out = append(out, "(empty)")
		return strings.Join(out, "\n")
	}
	for i, ms := range m.missions {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s [%s] +%d XP", cursor, ms.Title, ms.Difficulty, ms.Rewards)
		if m.showAll {
			line += fmt.Sprintf(" (%s)", engine.StatusOf(ms))
		}
		out = append(out, line)
		if i == m.selected && ms.Punishment != nil {
			out = append(out, "    on fail: "+*ms.Punishment)
		}
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	ratio := float64(value) / float64(total)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

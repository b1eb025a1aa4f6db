package engine

import (
	"time"

	"solocraft/internal/storage"
)

type CompleteResult struct {
	MissionID   string `json:"missionId"`
	XP          int    `json:"xp"`
	LevelUp     bool   `json:"levelUp"`
	NewLevel    int    `json:"newLevel"`
	LevelBefore int    `json:"-"`
}

type FailResult struct {
	MissionID string   `json:"missionId"`
	Effects   []string `json:"effects"`
	XPAfter   int      `json:"-"`
	Level     int      `json:"-"`
}

func checkActive(m *storage.Mission) error {
	switch {
	case m.Completed:
		return InvalidStateError{Kind: "mission", ID: m.ID, Reason: "is already completed"}
	case m.Failed:
		return InvalidStateError{Kind: "mission", ID: m.ID, Reason: "has already failed"}
	}
	return nil
}

// CompleteMission moves an active mission to Completed and awards its XP.
// Nothing is mutated when the mission is already terminal.
func CompleteMission(m *storage.Mission, p *storage.UserProgress, now time.Time) (*CompleteResult, error) {
	if err := checkActive(m); err != nil {
		return nil, err
	}
	levelBefore := p.Level

	m.Completed = true
	m.CompletedAt = &now
	levelUp := AddXP(p, m.Rewards)

	return &CompleteResult{
		MissionID:   m.ID,
		XP:          m.Rewards,
		LevelUp:     levelUp,
		NewLevel:    p.Level,
		LevelBefore: levelBefore,
	}, nil
}

// FailMission moves an active mission to Failed and resolves its punishment
// against p (XP) and w (tickets).
func FailMission(m *storage.Mission, p *storage.UserProgress, w Wallet, now time.Time) (*FailResult, error) {
	if err := checkActive(m); err != nil {
		return nil, err
	}

	m.Failed = true
	m.FailedAt = &now
	text := ""
	if m.Punishment != nil {
		text = *m.Punishment
	}
	effects := ApplyPunishment(p, w, text)

	return &FailResult{
		MissionID: m.ID,
		Effects:   effects,
		XPAfter:   p.XP,
		Level:     p.Level,
	}, nil
}

package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// The encode/decode pairs below are the only sanctioned path between entities
// and stored documents. Documents are indented JSON, collections are ordered
// lists.

func encodeDoc(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return data, nil
}

func EncodeMissions(missions []Mission) ([]byte, error) {
	if missions == nil {
		missions = []Mission{}
	}
	data, err := encodeDoc(missions)
	if err != nil {
		return nil, fmt.Errorf("encode missions: %w", err)
	}
	return data, nil
}

func DecodeMissions(raw []byte) ([]Mission, error) {
	out, _, err := decodeMissions(raw)
	return out, err
}

// decodeMissions also reports whether any mission was given a new id.
func decodeMissions(raw []byte) ([]Mission, bool, error) {
	out := []Mission{}
	if len(raw) == 0 {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode missions: %w", err)
	}
	assigned := false
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.New().String()
			assigned = true
		}
		if out[i].Rewards < 0 {
			out[i].Rewards = 0
		}
	}
	return out, assigned, nil
}

func EncodeDebts(debts []InsightDebt) ([]byte, error) {
	if debts == nil {
		debts = []InsightDebt{}
	}
	data, err := encodeDoc(debts)
	if err != nil {
		return nil, fmt.Errorf("encode debts: %w", err)
	}
	return data, nil
}

func DecodeDebts(raw []byte) ([]InsightDebt, error) {
	out, _, err := decodeDebts(raw)
	return out, err
}

func decodeDebts(raw []byte) ([]InsightDebt, bool, error) {
	out := []InsightDebt{}
	if len(raw) == 0 {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode debts: %w", err)
	}
	assigned := false
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.New().String()
			assigned = true
		}
		// An uncleared debt never carries insight data.
		if !out[i].Cleared {
			out[i].InsightEntry = nil
			out[i].ClearedAt = nil
		}
	}
	return out, assigned, nil
}

func EncodeProgress(p UserProgress) ([]byte, error) {
	if p.Badges == nil {
		p.Badges = []string{}
	}
	data, err := encodeDoc(p)
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return data, nil
}

type progressDoc struct {
	XP              *int       `json:"xp"`
	HelpTickets     *int       `json:"helpTickets"`
	TutorialTickets *int       `json:"tutorialTickets"`
	LastTicketReset *time.Time `json:"lastTicketReset"`
	Level           *int       `json:"level"`
	Badges          []string   `json:"badges"`
}

// DecodeProgress fills missing fields from limits and now. An explicit zero
// balance stays zero.
func DecodeProgress(raw []byte, limits TicketLimits, now time.Time) (UserProgress, error) {
	p := NewUserProgress(limits, now)
	if len(raw) == 0 {
		return p, nil
	}
	var doc progressDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return p, fmt.Errorf("decode progress: %w", err)
	}
	if doc.XP != nil {
		p.XP = max(0, *doc.XP)
	}
	if doc.HelpTickets != nil {
		p.HelpTickets = clamp(*doc.HelpTickets, 0, limits.Help)
	}
	if doc.TutorialTickets != nil {
		p.TutorialTickets = clamp(*doc.TutorialTickets, 0, limits.Tutorial)
	}
	if doc.LastTicketReset != nil {
		p.LastTicketReset = *doc.LastTicketReset
	}
	if doc.Level != nil {
		p.Level = max(1, *doc.Level)
	}
	if doc.Badges != nil {
		p.Badges = doc.Badges
	}
	return p, nil
}

func EncodeProjects(projects []Project) ([]byte, error) {
	if projects == nil {
		projects = []Project{}
	}
	data, err := encodeDoc(projects)
	if err != nil {
		return nil, fmt.Errorf("encode projects: %w", err)
	}
	return data, nil
}

type projectDoc struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Description         *string    `json:"description"`
	CreatedAt           *time.Time `json:"createdAt"`
	HelpTicketLimit     *int       `json:"helpTicketLimit"`
	TutorialTicketLimit *int       `json:"tutorialTicketLimit"`
	HelpTicketsUsed     int        `json:"helpTicketsUsed"`
	TutorialTicketsUsed int        `json:"tutorialTicketsUsed"`
	LastTicketReset     *time.Time `json:"lastTicketReset"`
}

func DecodeProjects(raw []byte, limits TicketLimits, now time.Time) ([]Project, error) {
	out, _, err := decodeProjects(raw, limits, now)
	return out, err
}

func decodeProjects(raw []byte, limits TicketLimits, now time.Time) ([]Project, bool, error) {
	out := []Project{}
	if len(raw) == 0 {
		return out, false, nil
	}
	var docs []projectDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, false, fmt.Errorf("decode projects: %w", err)
	}
	assigned := false
	for _, d := range docs {
		if d.ID == "" {
			assigned = true
		}
		p := NewProject(d.ID, d.Name, limits, now)
		p.Description = d.Description
		if d.CreatedAt != nil {
			p.CreatedAt = *d.CreatedAt
		}
		if d.HelpTicketLimit != nil {
			p.HelpTicketLimit = max(0, *d.HelpTicketLimit)
		}
		if d.TutorialTicketLimit != nil {
			p.TutorialTicketLimit = max(0, *d.TutorialTicketLimit)
		}
		p.HelpTicketsUsed = max(0, d.HelpTicketsUsed)
		p.TutorialTicketsUsed = max(0, d.TutorialTicketsUsed)
		if d.LastTicketReset != nil {
			p.LastTicketReset = *d.LastTicketReset
		}
		out = append(out, p)
	}
	return out, assigned, nil
}

func EncodeSettings(s Settings) ([]byte, error) {
	data, err := encodeDoc(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}

func DecodeSettings(raw []byte) (Settings, error) {
	var s Settings
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if s.CurrentProjectID != nil && *s.CurrentProjectID == "" {
		s.CurrentProjectID = nil
	}
	return s, nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}

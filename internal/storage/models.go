package storage

import (
	"time"

	"github.com/google/uuid"
)

// Collection document names. They double as the file names of the JSON backend.
const (
	CollectionMissions = "missions"
	CollectionDebts    = "insight_debts"
	CollectionProgress = "user_progress"
	CollectionProjects = "projects"
	CollectionSettings = "settings"
)

// Default weekly ticket quota used when nothing else is configured.
const (
	DefaultHelpTickets     = 3
	DefaultTutorialTickets = 2
)

// Ticket type names as stored on debts.
const (
	TicketHelp     = "Help"
	TicketTutorial = "Tutorial"
)

type Mission struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Difficulty  string     `json:"difficulty"`
	Constraints *string    `json:"constraints"`
	Rewards     int        `json:"rewards"`
	Punishment  *string    `json:"punishment"`
	ProjectID   *string    `json:"projectId"`
	CreatedAt   time.Time  `json:"createdAt"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Failed      bool       `json:"failed"`
	FailedAt    *time.Time `json:"failedAt"`
}

// NewMission builds an active mission. An empty id gets a fresh uuid.
func NewMission(id, title, difficulty string, rewards int, now time.Time) Mission {
	if id == "" {
		id = uuid.New().String()
	}
	return Mission{
		ID:         id,
		Title:      title,
		Difficulty: difficulty,
		Rewards:    rewards,
		CreatedAt:  now,
	}
}

// IsActive reports whether the mission is neither completed nor failed.
func (m Mission) IsActive() bool { return !m.Completed && !m.Failed }

type InsightDebt struct {
	ID           string     `json:"id"`
	TicketType   string     `json:"ticketType"`
	UsedFor      string     `json:"usedFor"`
	ProjectID    *string    `json:"projectId"`
	CreatedAt    time.Time  `json:"createdAt"`
	Cleared      bool       `json:"cleared"`
	InsightEntry *string    `json:"insightEntry"`
	ClearedAt    *time.Time `json:"clearedAt"`
}

func NewInsightDebt(id, ticketType, usedFor string, now time.Time) InsightDebt {
	if id == "" {
		id = uuid.New().String()
	}
	return InsightDebt{
		ID:         id,
		TicketType: ticketType,
		UsedFor:    usedFor,
		CreatedAt:  now,
	}
}

// UserProgress is the process-wide progression singleton.
type UserProgress struct {
	XP              int       `json:"xp"`
	HelpTickets     int       `json:"helpTickets"`
	TutorialTickets int       `json:"tutorialTickets"`
	LastTicketReset time.Time `json:"lastTicketReset"`
	Level           int       `json:"level"`
	Badges          []string  `json:"badges"`
}

func NewUserProgress(limits TicketLimits, now time.Time) UserProgress {
	return UserProgress{
		HelpTickets:     limits.Help,
		TutorialTickets: limits.Tutorial,
		LastTicketReset: now,
		Level:           1,
		Badges:          []string{},
	}
}

// Project scopes missions and owns an independent weekly ticket economy.
type Project struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         *string   `json:"description"`
	CreatedAt           time.Time `json:"createdAt"`
	HelpTicketLimit     int       `json:"helpTicketLimit"`
	TutorialTicketLimit int       `json:"tutorialTicketLimit"`
	HelpTicketsUsed     int       `json:"helpTicketsUsed"`
	TutorialTicketsUsed int       `json:"tutorialTicketsUsed"`
	LastTicketReset     time.Time `json:"lastTicketReset"`
}

func NewProject(id, name string, limits TicketLimits, now time.Time) Project {
	if id == "" {
		id = uuid.New().String()
	}
	return Project{
		ID:                  id,
		Name:                name,
		CreatedAt:           now,
		HelpTicketLimit:     limits.Help,
		TutorialTicketLimit: limits.Tutorial,
		LastTicketReset:     now,
	}
}

// Settings is the small record holding the active project selector.
type Settings struct {
	CurrentProjectID *string `json:"currentProjectId"`
}

// TicketLimits is the configured weekly quota for one scope.
type TicketLimits struct {
	Help     int
	Tutorial int
}

func DefaultTicketLimits() TicketLimits {
	return TicketLimits{Help: DefaultHelpTickets, Tutorial: DefaultTutorialTickets}
}

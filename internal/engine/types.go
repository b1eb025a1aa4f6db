package engine

import "solocraft/internal/storage"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

type TicketType string

const (
	TicketHelp     TicketType = storage.TicketHelp
	TicketTutorial TicketType = storage.TicketTutorial
)

// ticketTypes is the order ticket rules walk; help comes first.
var ticketTypes = []TicketType{TicketHelp, TicketTutorial}

func (t TicketType) IsValid() bool {
	return t == TicketHelp || t == TicketTutorial
}

// Keyword is the lower-case word used in punishment text and messages.
func (t TicketType) Keyword() string {
	switch t {
	case TicketHelp:
		return "help"
	case TicketTutorial:
		return "tutorial"
	default:
		return string(t)
	}
}

// MissionStatus filters mission listings. The zero value lists everything.
type MissionStatus string

const (
	MissionAll       MissionStatus = ""
	MissionActive    MissionStatus = "active"
	MissionCompleted MissionStatus = "completed"
	MissionFailed    MissionStatus = "failed"
)

// StatusOf returns the lifecycle state of a stored mission.
func StatusOf(m storage.Mission) MissionStatus {
	switch {
	case m.Completed:
		return MissionCompleted
	case m.Failed:
		return MissionFailed
	default:
		return MissionActive
	}
}

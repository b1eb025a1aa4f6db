package engine

import "strings"

// ParseDifficulty accepts easy|medium|hard in any case.
func ParseDifficulty(input string) (Difficulty, error) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "easy", "e":
		return DifficultyEasy, nil
	case "medium", "med", "m":
		return DifficultyMedium, nil
	case "hard", "h":
		return DifficultyHard, nil
	default:
		return "", ValidationError{Field: "difficulty", Reason: "must be Easy, Medium or Hard"}
	}
}

// ParseTicketType accepts help|tutorial in any case.
func ParseTicketType(input string) (TicketType, error) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "help":
		return TicketHelp, nil
	case "tutorial", "tut":
		return TicketTutorial, nil
	default:
		return "", ValidationError{Field: "ticket type", Reason: "must be help or tutorial"}
	}
}

// ParseMissionStatus maps a filter name to a MissionStatus. Empty and "all"
// list everything.
func ParseMissionStatus(input string) (MissionStatus, error) {
	switch s := strings.TrimSpace(strings.ToLower(input)); s {
	case "", "all":
		return MissionAll, nil
	case string(MissionActive), string(MissionCompleted), string(MissionFailed):
		return MissionStatus(s), nil
	default:
		return "", ValidationError{Field: "status", Reason: "must be active, completed, failed or all"}
	}
}

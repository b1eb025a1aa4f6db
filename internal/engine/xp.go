package engine

import "solocraft/internal/storage"

// XPPerLevel is the width of every level band: level = floor(xp/100)+1.
const XPPerLevel = 100

// LevelForXP returns the level a given XP total maps to. Level 1 is the floor.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// XPForLevel returns the XP total at which the given level starts.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * XPPerLevel
}

// AddXP adds amount to the progress and raises the level if the new total
// crossed a band boundary. It never lowers the level and reports whether a
// level-up happened.
func AddXP(p *storage.UserProgress, amount int) bool {
	if amount < 0 {
		amount = 0
	}
	p.XP += amount
	newLevel := LevelForXP(p.XP)
	if newLevel > p.Level {
		p.Level = newLevel
		return true
	}
	return false
}

// removeXP subtracts up to amount, flooring at zero, and returns what was
// actually removed. Level is left to the caller.
func removeXP(p *storage.UserProgress, amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := p.XP
	p.XP = max(0, p.XP-amount)
	return before - p.XP
}

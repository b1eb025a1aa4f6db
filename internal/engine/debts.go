package engine

import (
	"strings"
	"time"

	"solocraft/internal/storage"
)

// ClearDebt records the insight and closes the debt. Clearing is one-way.
func ClearDebt(d *storage.InsightDebt, insight string, now time.Time) error {
	if d.Cleared {
		return AlreadyClearedError{DebtID: d.ID}
	}
	insight = strings.TrimSpace(insight)
	if insight == "" {
		return ValidationError{Field: "insight", Reason: "text is required"}
	}
	d.Cleared = true
	d.InsightEntry = &insight
	d.ClearedAt = &now
	return nil
}

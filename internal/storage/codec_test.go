package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestMissionRoundTripKeepsNulls(t *testing.T) {
	done := t0.Add(time.Hour)
	missions := []Mission{
		NewMission("m1", "Write tests", "Easy", 20, t0),
		{
			ID:          "m2",
			Title:       "Ship release",
			Description: strPtr("cut the tag"),
			Difficulty:  "Hard",
			Constraints: strPtr("no overtime"),
			Rewards:     150,
			Punishment:  strPtr("Lose 30 XP"),
			ProjectID:   strPtr("p1"),
			CreatedAt:   t0,
			Completed:   true,
			CompletedAt: &done,
		},
	}

	first, err := EncodeMissions(missions)
	require.NoError(t, err)
	decoded, err := DecodeMissions(first)
	require.NoError(t, err)
	second, err := EncodeMissions(decoded)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, missions, decoded)
	assert.Contains(t, string(first), `"punishment": null`)
	assert.Contains(t, string(first), `"description": null`)
}

func TestDecodeMissionsDefaults(t *testing.T) {
	raw := []byte(`[{"id":"a","title":"Legacy","difficulty":"Medium","rewards":40,
		"createdAt":"2024-05-01T10:00:00.000Z","completed":false,"completedAt":null}]`)

	out, err := DecodeMissions(raw)
	require.NoError(t, err)
	require.Len(t, out, 1)

	m := out[0]
	assert.False(t, m.Failed)
	assert.Nil(t, m.FailedAt)
	assert.Nil(t, m.Punishment)
	assert.Nil(t, m.Constraints)
	assert.Nil(t, m.ProjectID)
	assert.True(t, m.IsActive())
}

func TestDecodeMissionsAssignsMissingID(t *testing.T) {
	out, err := DecodeMissions([]byte(`[{"title":"no id"}]`))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].ID)
}

func TestDebtRoundTrip(t *testing.T) {
	cleared := t0.Add(2 * time.Hour)
	debts := []InsightDebt{
		NewInsightDebt("d1", TicketHelp, "stuck on generics", t0),
		{
			ID:           "d2",
			TicketType:   TicketTutorial,
			UsedFor:      "sqlite pragmas",
			ProjectID:    strPtr("p1"),
			CreatedAt:    t0,
			Cleared:      true,
			InsightEntry: strPtr("busy_timeout matters"),
			ClearedAt:    &cleared,
		},
	}

	first, err := EncodeDebts(debts)
	require.NoError(t, err)
	decoded, err := DecodeDebts(first)
	require.NoError(t, err)
	second, err := EncodeDebts(decoded)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, debts, decoded)
}

func TestDecodeDebtsDropsInsightOnUnclearedDebt(t *testing.T) {
	out, err := DecodeDebts([]byte(`[{"id":"d","ticketType":"Help","cleared":false,"insightEntry":"x"}]`))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].InsightEntry)
	assert.Nil(t, out[0].ClearedAt)
}

func TestProgressRoundTrip(t *testing.T) {
	p := UserProgress{
		XP:              245,
		HelpTickets:     1,
		TutorialTickets: 0,
		LastTicketReset: t0,
		Level:           3,
		Badges:          []string{"early-bird"},
	}
	first, err := EncodeProgress(p)
	require.NoError(t, err)
	decoded, err := DecodeProgress(first, DefaultTicketLimits(), t0.Add(time.Hour))
	require.NoError(t, err)
	second, err := EncodeProgress(decoded)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, p, decoded)
}

func TestDecodeProgressDefaults(t *testing.T) {
	now := t0
	limits := TicketLimits{Help: 4, Tutorial: 1}

	t.Run("empty document", func(t *testing.T) {
		p, err := DecodeProgress(nil, limits, now)
		require.NoError(t, err)
		assert.Equal(t, NewUserProgress(limits, now), p)
	})

	t.Run("explicit zero balance stays zero", func(t *testing.T) {
		p, err := DecodeProgress([]byte(`{"xp":50,"helpTickets":0,"tutorialTickets":0}`), limits, now)
		require.NoError(t, err)
		assert.Equal(t, 0, p.HelpTickets)
		assert.Equal(t, 0, p.TutorialTickets)
		assert.Equal(t, 1, p.Level)
		assert.Equal(t, now, p.LastTicketReset)
		assert.Equal(t, []string{}, p.Badges)
	})

	t.Run("balances clamp to the limit", func(t *testing.T) {
		p, err := DecodeProgress([]byte(`{"helpTickets":9,"tutorialTickets":-2,"level":0}`), limits, now)
		require.NoError(t, err)
		assert.Equal(t, 4, p.HelpTickets)
		assert.Equal(t, 0, p.TutorialTickets)
		assert.Equal(t, 1, p.Level)
	})
}

func TestProjectRoundTripAndDefaults(t *testing.T) {
	p := NewProject("p1", "Thesis", TicketLimits{Help: 5, Tutorial: 1}, t0)
	p.Description = strPtr("chapter 3")
	p.HelpTicketsUsed = 2

	first, err := EncodeProjects([]Project{p})
	require.NoError(t, err)
	decoded, err := DecodeProjects(first, DefaultTicketLimits(), t0.Add(time.Hour))
	require.NoError(t, err)
	second, err := EncodeProjects(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))

	out, err := DecodeProjects([]byte(`[{"id":"x","name":"bare"}]`), DefaultTicketLimits(), t0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, DefaultHelpTickets, out[0].HelpTicketLimit)
	assert.Equal(t, DefaultTutorialTickets, out[0].TutorialTicketLimit)
	assert.Equal(t, t0, out[0].LastTicketReset)
	assert.Nil(t, out[0].Description)
}

func TestSettingsRoundTrip(t *testing.T) {
	s := Settings{CurrentProjectID: strPtr("p1")}
	raw, err := EncodeSettings(s)
	require.NoError(t, err)
	decoded, err := DecodeSettings(raw)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)

	empty, err := DecodeSettings([]byte(`{"currentProjectId":""}`))
	require.NoError(t, err)
	assert.Nil(t, empty.CurrentProjectID)

	raw, err = EncodeSettings(Settings{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentProjectId":null}`, string(raw))
}

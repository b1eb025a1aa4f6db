package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendCase struct {
	name string
	open func(t *testing.T) Backend
}

func backends() []backendCase {
	return []backendCase{
		{
			name: "sqlite",
			open: func(t *testing.T) Backend {
				b, err := NewSQLiteBackend(context.Background(), filepath.Join(t.TempDir(), "solocraft.db"))
				require.NoError(t, err)
				return b
			},
		},
		{
			name: "json",
			open: func(t *testing.T) Backend {
				b, err := NewFileBackend(filepath.Join(t.TempDir(), "solocraft_data"))
				require.NoError(t, err)
				return b
			},
		},
	}
}

func newTestStore(t *testing.T, b Backend) *Store {
	t.Helper()
	s := NewStore(b, WithClock(func() time.Time { return t0 }))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreUpsertLoadDelete(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(t, bc.open(t))

			err := s.Update(ctx, func(snap *Snapshot) error {
				snap.PutMission(NewMission("a", "first", "Easy", 10, t0))
				snap.PutMission(NewMission("b", "second", "Hard", 90, t0))
				return nil
			})
			require.NoError(t, err)

			err = s.Update(ctx, func(snap *Snapshot) error {
				m, ok := snap.Mission("a")
				require.True(t, ok)
				m.Title = "first, renamed"
				snap.PutMission(m)
				assert.True(t, snap.DeleteMission("b"))
				assert.False(t, snap.DeleteMission("missing"))
				return nil
			})
			require.NoError(t, err)

			err = s.View(ctx, func(snap *Snapshot) error {
				all := snap.Missions()
				require.Len(t, all, 1)
				assert.Equal(t, "first, renamed", all[0].Title)
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestStoreUpdateErrorWritesNothing(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(t, bc.open(t))
			boom := errors.New("boom")

			err := s.Update(ctx, func(snap *Snapshot) error {
				snap.PutMission(NewMission("a", "never", "Easy", 10, t0))
				p := snap.Progress()
				p.XP = 999
				snap.PutProgress(p)
				return boom
			})
			require.ErrorIs(t, err, boom)

			err = s.View(ctx, func(snap *Snapshot) error {
				assert.Empty(t, snap.Missions())
				assert.Equal(t, 0, snap.Progress().XP)
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestStoreCreatesProgressOnFirstAccess(t *testing.T) {
	for _, bc := range backends() {
		t.Run(bc.name, func(t *testing.T) {
			ctx := context.Background()
			b := bc.open(t)
			s := newTestStore(t, b)

			require.NoError(t, s.Update(ctx, func(*Snapshot) error { return nil }))

			raw, err := b.Load(ctx, CollectionProgress)
			require.NoError(t, err)
			require.NotNil(t, raw)
			p, err := DecodeProgress(raw, DefaultTicketLimits(), t0.Add(time.Hour))
			require.NoError(t, err)
			assert.Equal(t, NewUserProgress(DefaultTicketLimits(), t0), p)
		})
	}
}

func TestStoreFilteredViews(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, backends()[0].open(t))

	require.NoError(t, s.Update(ctx, func(snap *Snapshot) error {
		active := NewMission("active", "a", "Easy", 1, t0)
		active.ProjectID = strPtr("p1")
		done := NewMission("done", "d", "Easy", 1, t0)
		done.Completed = true
		failed := NewMission("failed", "f", "Easy", 1, t0)
		failed.Failed = true
		failed.ProjectID = strPtr("p1")
		snap.PutMission(active)
		snap.PutMission(done)
		snap.PutMission(failed)

		open := NewInsightDebt("d1", TicketHelp, "x", t0)
		closed := NewInsightDebt("d2", TicketTutorial, "y", t0)
		closed.Cleared = true
		closed.InsightEntry = strPtr("learned")
		closed.ClearedAt = &t0
		snap.PutDebt(open)
		snap.PutDebt(closed)
		return nil
	}))

	require.NoError(t, s.View(ctx, func(snap *Snapshot) error {
		assert.Equal(t, []string{"active"}, missionIDs(snap.ActiveMissions()))
		assert.Equal(t, []string{"done"}, missionIDs(snap.CompletedMissions()))
		assert.Equal(t, []string{"failed"}, missionIDs(snap.FailedMissions()))
		assert.Equal(t, []string{"active", "failed"}, missionIDs(snap.MissionsByProject("p1")))

		require.Len(t, snap.ActiveDebts(), 1)
		assert.Equal(t, "d1", snap.ActiveDebts()[0].ID)
		require.Len(t, snap.ClearedDebts(), 1)
		assert.Equal(t, "d2", snap.ClearedDebts()[0].ID)
		return nil
	}))
}

func TestDeleteProjectKeepsMissions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, backends()[1].open(t))

	require.NoError(t, s.Update(ctx, func(snap *Snapshot) error {
		snap.PutProject(NewProject("p1", "Garden", DefaultTicketLimits(), t0))
		m := NewMission("m1", "weed", "Easy", 5, t0)
		m.ProjectID = strPtr("p1")
		snap.PutMission(m)
		snap.PutSettings(Settings{CurrentProjectID: strPtr("p1")})
		return nil
	}))

	require.NoError(t, s.Update(ctx, func(snap *Snapshot) error {
		assert.True(t, snap.DeleteProject("p1"))
		return nil
	}))

	require.NoError(t, s.View(ctx, func(snap *Snapshot) error {
		assert.Empty(t, snap.Projects())
		m, ok := snap.Mission("m1")
		require.True(t, ok)
		require.NotNil(t, m.ProjectID)
		assert.Equal(t, "p1", *m.ProjectID)
		_, ok = snap.CurrentProject()
		assert.False(t, ok)
		return nil
	}))
}

func TestCorruptDocumentDegradesToDefaults(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "missions.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_progress.json"), []byte("[]"), 0o644))

	s := newTestStore(t, b)
	require.NoError(t, s.View(ctx, func(snap *Snapshot) error {
		assert.Empty(t, snap.Missions())
		assert.Equal(t, NewUserProgress(DefaultTicketLimits(), t0), snap.Progress())
		return nil
	}))
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, b.Replace(ctx, map[string][]byte{
		CollectionMissions: []byte("[]"),
		CollectionSettings: []byte(`{"currentProjectId":null}`),
	}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"missions.json", "settings.json"}, names)
}

func TestSnapshotGettersReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, backends()[1].open(t))

	require.NoError(t, s.Update(ctx, func(snap *Snapshot) error {
		snap.PutMission(NewMission("a", "original", "Easy", 1, t0))
		all := snap.Missions()
		all[0].Title = "mutated copy"
		p := snap.Progress()
		p.Badges = append(p.Badges, "ghost")

		m, _ := snap.Mission("a")
		assert.Equal(t, "original", m.Title)
		assert.Empty(t, snap.Progress().Badges)
		return nil
	}))
}

func missionIDs(ms []Mission) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}

func TestStorePersistsIDsAssignedOnLoad(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "missions.json"),
		[]byte(`[{"title":"legacy","difficulty":"Easy","rewards":10}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "insight_debts.json"),
		[]byte(`[{"ticketType":"Help","usedFor":"old question"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "projects.json"),
		[]byte(`[{"name":"legacy project"}]`), 0o644))

	s := newTestStore(t, b)
	var first, second Snapshot
	require.NoError(t, s.View(ctx, func(snap *Snapshot) error {
		first = *snap
		return nil
	}))
	require.NoError(t, s.View(ctx, func(snap *Snapshot) error {
		second = *snap
		return nil
	}))
	require.Len(t, first.Missions(), 1)
	require.Len(t, first.Debts(), 1)
	require.Len(t, first.Projects(), 1)
	assert.Equal(t, first.Missions()[0].ID, second.Missions()[0].ID)
	assert.Equal(t, first.Debts()[0].ID, second.Debts()[0].ID)
	assert.Equal(t, first.Projects()[0].ID, second.Projects()[0].ID)

	id := first.Missions()[0].ID
	require.NoError(t, s.Update(ctx, func(snap *Snapshot) error {
		m, ok := snap.Mission(id)
		require.True(t, ok, "listed id %s must resolve", id)
		m.Completed = true
		snap.PutMission(m)
		return nil
	}))
	require.NoError(t, s.View(ctx, func(snap *Snapshot) error {
		m, ok := snap.Mission(id)
		require.True(t, ok)
		assert.True(t, m.Completed)
		return nil
	}))
}

func TestFileBackendReplaceIsAtomicPerFile(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, b.Replace(ctx, map[string][]byte{CollectionMissions: []byte("[]")}))
	// A directory in place of the progress document makes its rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, CollectionProgress+".json"), 0o755))

	err = b.Replace(ctx, map[string][]byte{
		CollectionMissions: []byte(`[{"id":"a"}]`),
		CollectionProgress: []byte(`{"xp":10}`),
	})
	require.Error(t, err)

	raw, err := b.Load(ctx, CollectionMissions)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(raw))
}

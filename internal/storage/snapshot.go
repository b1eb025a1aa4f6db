package storage

// Snapshot is the in-memory copy of every collection a store transaction
// works on. Getters hand out copies; changes only reach storage through the
// Put/Delete methods, which mark the collection for rewrite.
type Snapshot struct {
	missions []Mission
	debts    []InsightDebt
	progress UserProgress
	projects []Project
	settings Settings

	limits TicketLimits
	dirty  map[string]bool
}

func newSnapshot(limits TicketLimits) *Snapshot {
	return &Snapshot{limits: limits, dirty: map[string]bool{}}
}

func (s *Snapshot) touch(name string) { s.dirty[name] = true }

// TicketLimits returns the configured quota for the global progress.
func (s *Snapshot) TicketLimits() TicketLimits { return s.limits }

// Missions

func (s *Snapshot) Missions() []Mission {
	return append([]Mission(nil), s.missions...)
}

func (s *Snapshot) Mission(id string) (Mission, bool) {
	for _, m := range s.missions {
		if m.ID == id {
			return m, true
		}
	}
	return Mission{}, false
}

// PutMission updates the mission in place or appends it.
func (s *Snapshot) PutMission(m Mission) {
	s.touch(CollectionMissions)
	for i := range s.missions {
		if s.missions[i].ID == m.ID {
			s.missions[i] = m
			return
		}
	}
	s.missions = append(s.missions, m)
}

func (s *Snapshot) DeleteMission(id string) bool {
	for i := range s.missions {
		if s.missions[i].ID == id {
			s.missions = append(s.missions[:i], s.missions[i+1:]...)
			s.touch(CollectionMissions)
			return true
		}
	}
	return false
}

func (s *Snapshot) filterMissions(keep func(Mission) bool) []Mission {
	var out []Mission
	for _, m := range s.missions {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Snapshot) ActiveMissions() []Mission {
	return s.filterMissions(Mission.IsActive)
}

func (s *Snapshot) CompletedMissions() []Mission {
	return s.filterMissions(func(m Mission) bool { return m.Completed })
}

func (s *Snapshot) FailedMissions() []Mission {
	return s.filterMissions(func(m Mission) bool { return m.Failed })
}

func (s *Snapshot) MissionsByProject(projectID string) []Mission {
	return s.filterMissions(func(m Mission) bool {
		return m.ProjectID != nil && *m.ProjectID == projectID
	})
}

// Insight debts

func (s *Snapshot) Debts() []InsightDebt {
	return append([]InsightDebt(nil), s.debts...)
}

func (s *Snapshot) Debt(id string) (InsightDebt, bool) {
	for _, d := range s.debts {
		if d.ID == id {
			return d, true
		}
	}
	return InsightDebt{}, false
}

func (s *Snapshot) PutDebt(d InsightDebt) {
	s.touch(CollectionDebts)
	for i := range s.debts {
		if s.debts[i].ID == d.ID {
			s.debts[i] = d
			return
		}
	}
	s.debts = append(s.debts, d)
}

func (s *Snapshot) ActiveDebts() []InsightDebt {
	var out []InsightDebt
	for _, d := range s.debts {
		if !d.Cleared {
			out = append(out, d)
		}
	}
	return out
}

func (s *Snapshot) ClearedDebts() []InsightDebt {
	var out []InsightDebt
	for _, d := range s.debts {
		if d.Cleared {
			out = append(out, d)
		}
	}
	return out
}

// Progress

func (s *Snapshot) Progress() UserProgress {
	p := s.progress
	p.Badges = append([]string{}, s.progress.Badges...)
	return p
}

func (s *Snapshot) PutProgress(p UserProgress) {
	s.progress = p
	s.touch(CollectionProgress)
}

// Projects

func (s *Snapshot) Projects() []Project {
	return append([]Project(nil), s.projects...)
}

func (s *Snapshot) Project(id string) (Project, bool) {
	for _, p := range s.projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

func (s *Snapshot) PutProject(p Project) {
	s.touch(CollectionProjects)
	for i := range s.projects {
		if s.projects[i].ID == p.ID {
			s.projects[i] = p
			return
		}
	}
	s.projects = append(s.projects, p)
}

// DeleteProject removes only the project. Missions keep their projectId.
func (s *Snapshot) DeleteProject(id string) bool {
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			s.touch(CollectionProjects)
			return true
		}
	}
	return false
}

// Settings

func (s *Snapshot) Settings() Settings { return s.settings }

func (s *Snapshot) PutSettings(st Settings) {
	s.settings = st
	s.touch(CollectionSettings)
}

// CurrentProject resolves the selected project. A selector pointing at a
// deleted project resolves to none.
func (s *Snapshot) CurrentProject() (Project, bool) {
	if s.settings.CurrentProjectID == nil {
		return Project{}, false
	}
	return s.Project(*s.settings.CurrentProjectID)
}

func (s *Snapshot) encodeDirty() (map[string][]byte, error) {
	docs := map[string][]byte{}
	for name := range s.dirty {
		var (
			data []byte
			err  error
		)
		switch name {
		case CollectionMissions:
			data, err = EncodeMissions(s.missions)
		case CollectionDebts:
			data, err = EncodeDebts(s.debts)
		case CollectionProgress:
			data, err = EncodeProgress(s.progress)
		case CollectionProjects:
			data, err = EncodeProjects(s.projects)
		case CollectionSettings:
			data, err = EncodeSettings(s.settings)
		}
		if err != nil {
			return nil, err
		}
		docs[name] = data
	}
	return docs, nil
}

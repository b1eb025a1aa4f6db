package engine

import (
	"context"

	"go.uber.org/zap"

	"solocraft/internal/storage"
)

type CreateMissionInput struct {
	Title       string
	Description *string
	Difficulty  Difficulty
	Constraints *string
	Rewards     int
	Punishment  *string
	// ProjectID nil means "the current project, if any"; an empty string
	// creates an unscoped mission.
	ProjectID *string
}

type CreateMissionResult struct {
	MissionID string
	ProjectID *string
}

func (s *Service) CreateMission(ctx context.Context, in CreateMissionInput) (*CreateMissionResult, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if !in.Difficulty.IsValid() {
		return nil, ValidationError{Field: "difficulty", Reason: "must be Easy, Medium or Hard"}
	}
	if in.Rewards < 0 {
		return nil, ValidationError{Field: "rewards", Reason: "must be a non-negative integer"}
	}

	var res CreateMissionResult
	err = s.store.Update(ctx, func(snap *storage.Snapshot) error {
		m := storage.NewMission("", title, string(in.Difficulty), in.Rewards, s.now())
		m.Description = optionalText(in.Description)
		m.Constraints = optionalText(in.Constraints)
		m.Punishment = optionalText(in.Punishment)

		switch {
		case in.ProjectID == nil:
			if proj, ok := snap.CurrentProject(); ok {
				id := proj.ID
				m.ProjectID = &id
			}
		case *in.ProjectID != "":
			if _, ok := snap.Project(*in.ProjectID); !ok {
				return NotFoundError{Kind: "project", ID: *in.ProjectID}
			}
			id := *in.ProjectID
			m.ProjectID = &id
		}

		snap.PutMission(m)
		res = CreateMissionResult{MissionID: m.ID, ProjectID: m.ProjectID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("mission created", zap.String("mission", res.MissionID), zap.String("title", title), zap.Int("rewards", in.Rewards))
	return &res, nil
}

// MissionFilter narrows ListMissions. A nil ProjectID lists every scope.
type MissionFilter struct {
	Status    MissionStatus
	ProjectID *string
}

func (s *Service) ListMissions(ctx context.Context, f MissionFilter) ([]storage.Mission, error) {
	out := []storage.Mission{}
	err := s.store.View(ctx, func(snap *storage.Snapshot) error {
		var list []storage.Mission
		switch f.Status {
		case MissionActive:
			list = snap.ActiveMissions()
		case MissionCompleted:
			list = snap.CompletedMissions()
		case MissionFailed:
			list = snap.FailedMissions()
		default:
			list = snap.Missions()
		}
		for _, m := range list {
			if f.ProjectID != nil && (m.ProjectID == nil || *m.ProjectID != *f.ProjectID) {
				continue
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetMission(ctx context.Context, id string) (*storage.Mission, error) {
	var out *storage.Mission
	err := s.store.View(ctx, func(snap *storage.Snapshot) error {
		m, ok := snap.Mission(id)
		if !ok {
			return NotFoundError{Kind: "mission", ID: id}
		}
		out = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteMission removes a mission in any state. Progress is not touched.
func (s *Service) DeleteMission(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(snap *storage.Snapshot) error {
		if !snap.DeleteMission(id) {
			return NotFoundError{Kind: "mission", ID: id}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("mission deleted", zap.String("mission", id))
	return nil
}

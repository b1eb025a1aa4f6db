package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"solocraft/internal/storage"
)

// ProjectView is a stored project plus the derived balances adapters show.
type ProjectView struct {
	storage.Project
	HelpTicketsRemaining     int  `json:"helpTicketsRemaining"`
	TutorialTicketsRemaining int  `json:"tutorialTicketsRemaining"`
	Current                  bool `json:"current"`
	MissionCount             int  `json:"missionCount"`
}

func newProjectView(snap *storage.Snapshot, p storage.Project) ProjectView {
	cur := snap.Settings().CurrentProjectID
	return ProjectView{
		Project:                  p,
		HelpTicketsRemaining:     ProjectRemaining(p, TicketHelp),
		TutorialTicketsRemaining: ProjectRemaining(p, TicketTutorial),
		Current:                  cur != nil && *cur == p.ID,
		MissionCount:             len(snap.MissionsByProject(p.ID)),
	}
}

type CreateProjectInput struct {
	Name        string
	Description *string
	// Nil limits fall back to the configured weekly quota.
	HelpTicketLimit     *int
	TutorialTicketLimit *int
	MakeCurrent         bool
}

type UpdateProjectInput struct {
	ID                  string
	Name                *string
	Description         *string
	HelpTicketLimit     *int
	TutorialTicketLimit *int
}

func validateLimit(field string, v *int) error {
	if v != nil && *v < 0 {
		return ValidationError{Field: field, Reason: "must be a non-negative integer"}
	}
	return nil
}

func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", ValidationError{Field: "name", Reason: "is required"}
	}
	if err := validateLimit("helpTicketLimit", in.HelpTicketLimit); err != nil {
		return "", err
	}
	if err := validateLimit("tutorialTicketLimit", in.TutorialTicketLimit); err != nil {
		return "", err
	}

	var id string
	err := s.store.Update(ctx, func(snap *storage.Snapshot) error {
		p := storage.NewProject("", name, snap.TicketLimits(), s.now())
		p.Description = optionalText(in.Description)
		if in.HelpTicketLimit != nil {
			p.HelpTicketLimit = *in.HelpTicketLimit
		}
		if in.TutorialTicketLimit != nil {
			p.TutorialTicketLimit = *in.TutorialTicketLimit
		}
		snap.PutProject(p)
		if in.MakeCurrent {
			pid := p.ID
			snap.PutSettings(storage.Settings{CurrentProjectID: &pid})
		}
		id = p.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	s.log.Info("project created", zap.String("project", id), zap.String("name", name))
	return id, nil
}

// UpdateProject changes only the fields that are set. Lowering a limit below
// current usage leaves zero remaining; it never goes negative.
func (s *Service) UpdateProject(ctx context.Context, in UpdateProjectInput) error {
	if err := validateLimit("helpTicketLimit", in.HelpTicketLimit); err != nil {
		return err
	}
	if err := validateLimit("tutorialTicketLimit", in.TutorialTicketLimit); err != nil {
		return err
	}
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return ValidationError{Field: "name", Reason: "is required"}
		}
	}

	return s.store.Update(ctx, func(snap *storage.Snapshot) error {
		p, ok := snap.Project(in.ID)
		if !ok {
			return NotFoundError{Kind: "project", ID: in.ID}
		}
		if in.Name != nil {
			p.Name = name
		}
		if in.Description != nil {
			p.Description = optionalText(in.Description)
		}
		if in.HelpTicketLimit != nil {
			p.HelpTicketLimit = *in.HelpTicketLimit
		}
		if in.TutorialTicketLimit != nil {
			p.TutorialTicketLimit = *in.TutorialTicketLimit
		}
		snap.PutProject(p)
		return nil
	})
}

// DeleteProject removes the project and, if it was selected, the selection.
// Missions referencing it are kept as they are.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(snap *storage.Snapshot) error {
		if !snap.DeleteProject(id) {
			return NotFoundError{Kind: "project", ID: id}
		}
		if cur := snap.Settings().CurrentProjectID; cur != nil && *cur == id {
			snap.PutSettings(storage.Settings{})
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("project deleted", zap.String("project", id))
	return nil
}

// SetCurrentProject selects the project ticket operations use. An empty id
// switches back to the global balance.
func (s *Service) SetCurrentProject(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	return s.store.Update(ctx, func(snap *storage.Snapshot) error {
		if id == "" {
			snap.PutSettings(storage.Settings{})
			return nil
		}
		if _, ok := snap.Project(id); !ok {
			return NotFoundError{Kind: "project", ID: id}
		}
		snap.PutSettings(storage.Settings{CurrentProjectID: &id})
		return nil
	})
}

func (s *Service) ListProjects(ctx context.Context) ([]ProjectView, error) {
	out := []ProjectView{}
	err := s.store.View(ctx, func(snap *storage.Snapshot) error {
		for _, p := range snap.Projects() {
			out = append(out, newProjectView(snap, p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentProject returns the selected project, or nil when none is selected
// or the selection points at a deleted project.
func (s *Service) CurrentProject(ctx context.Context) (*ProjectView, error) {
	var out *ProjectView
	err := s.store.View(ctx, func(snap *storage.Snapshot) error {
		if p, ok := snap.CurrentProject(); ok {
			v := newProjectView(snap, p)
			out = &v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

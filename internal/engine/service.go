package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"solocraft/internal/storage"
)

// Service is the request/response contract adapters call. Each method runs
// as one store transaction: load a snapshot, apply engine rules to copies,
// put the changed entities back.
type Service struct {
	store *storage.Store
	now   func() time.Time
	log   *zap.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(store *storage.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ValidationError{Field: "title", Reason: "is required"}
	}
	return t, nil
}

// optionalText trims the value and maps blank text to null.
func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// ProgressView is what getUserProgress answers. Ticket balances come from
// the current project when one is selected.
type ProgressView struct {
	XP              int       `json:"xp"`
	Level           int       `json:"level"`
	HelpTickets     int       `json:"helpTickets"`
	TutorialTickets int       `json:"tutorialTickets"`
	LastTicketReset time.Time `json:"lastTicketReset"`
	Badges          []string  `json:"badges"`
	NextLevelXP     int       `json:"nextLevelXp"`
	ProjectID       *string   `json:"projectId"`
	ProjectName     string    `json:"projectName,omitempty"`
}

func (s *Service) GetUserProgress(ctx context.Context) (*ProgressView, error) {
	var view ProgressView
	err := s.store.View(ctx, func(snap *storage.Snapshot) error {
		p := snap.Progress()
		view = ProgressView{
			XP:              p.XP,
			Level:           p.Level,
			HelpTickets:     p.HelpTickets,
			TutorialTickets: p.TutorialTickets,
			LastTicketReset: p.LastTicketReset,
			Badges:          p.Badges,
			NextLevelXP:     XPForLevel(p.Level + 1),
		}
		if proj, ok := snap.CurrentProject(); ok {
			id := proj.ID
			view.ProjectID = &id
			view.ProjectName = proj.Name
			view.HelpTickets = ProjectRemaining(proj, TicketHelp)
			view.TutorialTickets = ProjectRemaining(proj, TicketTutorial)
			view.LastTicketReset = proj.LastTicketReset
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// walletFor picks the scope whose tickets an operation spends. A projectID
// that no longer resolves falls back to the global progress.
func walletFor(snap *storage.Snapshot, progress *storage.UserProgress, projectID *string) (Wallet, *storage.Project) {
	if projectID != nil {
		if proj, ok := snap.Project(*projectID); ok {
			return ProjectWallet(&proj), &proj
		}
	}
	return ProgressWallet(progress), nil
}

// ResetReport lists which scopes had their weekly quota refilled.
type ResetReport struct {
	Global   bool
	Projects []string
}

// ResetDueTickets refills every scope whose period has elapsed. Adapters call
// it once when a session starts.
func (s *Service) ResetDueTickets(ctx context.Context) (*ResetReport, error) {
	now := s.now()
	report := &ResetReport{}
	err := s.store.Update(ctx, func(snap *storage.Snapshot) error {
		p := snap.Progress()
		if ShouldResetTickets(p.LastTicketReset, now) {
			ResetProgressTickets(&p, snap.TicketLimits(), now)
			snap.PutProgress(p)
			report.Global = true
		}
		for _, proj := range snap.Projects() {
			if !ShouldResetTickets(proj.LastTicketReset, now) {
				continue
			}
			ResetProjectTickets(&proj, now)
			snap.PutProject(proj)
			report.Projects = append(report.Projects, proj.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if report.Global || len(report.Projects) > 0 {
		s.log.Info("weekly tickets reset",
			zap.Bool("global", report.Global),
			zap.Strings("projects", report.Projects))
	}
	return report, nil
}

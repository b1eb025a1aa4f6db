package engine

import (
	"context"

	"go.uber.org/zap"

	"solocraft/internal/storage"
)

func (s *Service) CompleteMission(ctx context.Context, id string) (*CompleteResult, error) {
	var res *CompleteResult
	err := s.store.Update(ctx, func(snap *storage.Snapshot) error {
		m, ok := snap.Mission(id)
		if !ok {
			return NotFoundError{Kind: "mission", ID: id}
		}
		p := snap.Progress()

		r, err := CompleteMission(&m, &p, s.now())
		if err != nil {
			return err
		}
		snap.PutMission(m)
		snap.PutProgress(p)
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("mission completed",
		zap.String("mission", id),
		zap.Int("xp", res.XP),
		zap.Int("level", res.NewLevel))
	if res.LevelUp {
		s.log.Info("level up", zap.Int("from", res.LevelBefore), zap.Int("to", res.NewLevel))
	}
	return res, nil
}

// FailMission marks the mission failed and resolves its punishment. Ticket
// losses hit the mission's project when it still exists, otherwise the
// global balance; XP is always global.
func (s *Service) FailMission(ctx context.Context, id string) (*FailResult, error) {
	var res *FailResult
	err := s.store.Update(ctx, func(snap *storage.Snapshot) error {
		m, ok := snap.Mission(id)
		if !ok {
			return NotFoundError{Kind: "mission", ID: id}
		}
		p := snap.Progress()
		wallet, proj := walletFor(snap, &p, m.ProjectID)

		r, err := FailMission(&m, &p, wallet, s.now())
		if err != nil {
			return err
		}
		snap.PutMission(m)
		snap.PutProgress(p)
		if proj != nil {
			snap.PutProject(*proj)
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("mission failed",
		zap.String("mission", id),
		zap.Strings("effects", res.Effects),
		zap.Int("xp", res.XPAfter),
		zap.Int("level", res.Level))
	return res, nil
}

package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"solocraft/internal/storage"
)

type TicketResult struct {
	DebtID    string
	Ticket    TicketType
	Remaining int
	ProjectID *string
}

// UseTicket spends one ticket from the current scope and opens an insight
// debt for it. Both land in the same transaction.
func (s *Service) UseTicket(ctx context.Context, t TicketType, purpose string) (*TicketResult, error) {
	if !t.IsValid() {
		return nil, ValidationError{Field: "ticket type", Reason: "must be help or tutorial"}
	}
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return nil, ValidationError{Field: "purpose", Reason: "is required"}
	}

	var res TicketResult
	err := s.store.Update(ctx, func(snap *storage.Snapshot) error {
		p := snap.Progress()
		var scope *string
		if cur, ok := snap.CurrentProject(); ok {
			scope = &cur.ID
		}
		wallet, proj := walletFor(snap, &p, scope)

		if err := UseTicket(wallet, t); err != nil {
			return err
		}
		if proj != nil {
			snap.PutProject(*proj)
		} else {
			snap.PutProgress(p)
		}

		debt := storage.NewInsightDebt("", string(t), purpose, s.now())
		debt.ProjectID = scope
		snap.PutDebt(debt)

		res = TicketResult{DebtID: debt.ID, Ticket: t, Remaining: wallet.Remaining(t), ProjectID: scope}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("ticket used",
		zap.String("ticket", string(t)),
		zap.String("debt", res.DebtID),
		zap.Int("remaining", res.Remaining))
	return &res, nil
}

// WriteInsight clears a debt with the written reflection.
func (s *Service) WriteInsight(ctx context.Context, debtID, insight string) error {
	err := s.store.Update(ctx, func(snap *storage.Snapshot) error {
		d, ok := snap.Debt(debtID)
		if !ok {
			return NotFoundError{Kind: "insight debt", ID: debtID}
		}
		if err := ClearDebt(&d, insight, s.now()); err != nil {
			return err
		}
		snap.PutDebt(d)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("insight written", zap.String("debt", debtID))
	return nil
}

func (s *Service) ActiveDebts(ctx context.Context) ([]storage.InsightDebt, error) {
	out := []storage.InsightDebt{}
	err := s.store.View(ctx, func(snap *storage.Snapshot) error {
		out = append(out, snap.ActiveDebts()...)
		return nil
	})
	return out, err
}

func (s *Service) ClearedDebts(ctx context.Context) ([]storage.InsightDebt, error) {
	out := []storage.InsightDebt{}
	err := s.store.View(ctx, func(snap *storage.Snapshot) error {
		out = append(out, snap.ClearedDebts()...)
		return nil
	})
	return out, err
}

package root

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"solocraft/internal/config"
	"solocraft/internal/engine"
	"solocraft/internal/storage"
)

func openBackend(ctx context.Context) (storage.Backend, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		return storage.NewFileBackend(cfg.DataDir)
	default:
		return storage.NewSQLiteBackend(ctx, cfg.DBPath)
	}
}

// openService opens the configured store and refills any weekly ticket quota
// that came due since the last session.
func openService(ctx context.Context) (*engine.Service, func(), error) {
	backend, err := openBackend(ctx)
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewStore(backend,
		storage.WithLogger(logger),
		storage.WithTicketLimits(cfg.Tickets.Limits()))
	cleanup := func() {
		_ = store.Close()
	}

	svc := engine.NewService(store, engine.WithLogger(logger))
	if _, err := svc.ResetDueTickets(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	logger.Debug("store opened", zap.String("backend", cfg.Backend))
	return svc, cleanup, nil
}

// matchID resolves an id or a unique id prefix, so the short ids the CLI
// prints can be typed back.
func matchID(kind, input string, ids []string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", engine.ValidationError{Field: kind + " id", Reason: "is required"}
	}
	var found []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", engine.NotFoundError{Kind: kind, ID: input}
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, input, len(found))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func resolveMissionID(ctx context.Context, svc *engine.Service, input string) (string, error) {
	missions, err := svc.ListMissions(ctx, engine.MissionFilter{})
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(missions))
	for _, m := range missions {
		ids = append(ids, m.ID)
	}
	return matchID("mission", input, ids)
}

func resolveDebtID(ctx context.Context, svc *engine.Service, input string) (string, error) {
	var ids []string
	for _, list := range []func(context.Context) ([]storage.InsightDebt, error){svc.ActiveDebts, svc.ClearedDebts} {
		debts, err := list(ctx)
		if err != nil {
			return "", err
		}
		for _, d := range debts {
			ids = append(ids, d.ID)
		}
	}
	return matchID("insight debt", input, ids)
}

func resolveProjectID(ctx context.Context, svc *engine.Service, input string) (string, error) {
	projects, err := svc.ListProjects(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return matchID("project", input, ids)
}

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/repository"
	"github.com/budeshi/budeshi/internal/testutil"
	"github.com/stretchr/testify/require"
)

func newMemoryRepo(t *testing.T) *repository.MemoryProjectRepo {
	t.Helper()
	repo, err := repository.NewMemoryProjectRepo(testutil.SampleProjects())
	require.NoError(t, err)
	return repo
}

func newLocalOrchestrator(store repository.ProjectStore) *intelligence.Orchestrator {
	return intelligence.NewOrchestrator(intelligence.Deps{
		Store: store,
		Mode:  intelligence.ModeLocal,
	})
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}

// blockingResponder holds Respond until release is closed.
type blockingResponder struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingResponder) Respond(ctx context.Context, content string, _ []domain.Turn) (*intelligence.Reply, error) {
	close(b.entered)
	<-b.release
	return &intelligence.Reply{
		UserTurn: domain.NewTurn(domain.RoleUser, content),
		Turn:     domain.NewTurn(domain.RoleBot, "done"),
		Path:     intelligence.PathLocal,
	}, nil
}

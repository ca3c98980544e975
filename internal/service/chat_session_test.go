package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/repository"
	"github.com/budeshi/budeshi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSession_StartsWithWelcome(t *testing.T) {
	s, err := NewChatSession(context.Background(), newLocalOrchestrator(newMemoryRepo(t)), ChatOptions{})
	require.NoError(t, err)

	turns := s.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, domain.RoleBot, turns[0].Role)
	assert.Equal(t, WelcomeText, turns[0].Content)
	assert.NotEmpty(t, s.ConversationID())
}

func TestChatSession_Send_AppendsUserAndBotTurns(t *testing.T) {
	obs := &recordingObserver{}
	s, err := NewChatSession(context.Background(), newLocalOrchestrator(newMemoryRepo(t)), ChatOptions{Observer: obs})
	require.NoError(t, err)

	reply, err := s.Send(context.Background(), "What is the budget for Abuja Light Rail Project?")
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, intelligence.PathLocal, reply.Path)
	assert.Equal(t, intelligence.IntentBudget, reply.Intent)

	turns := s.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, domain.RoleUser, turns[1].Role)
	assert.Equal(t, domain.RoleBot, turns[2].Role)
	assert.Contains(t, turns[2].Content, "₦45,000,000,000")
	assert.False(t, s.Busy())

	require.Len(t, obs.events, 1)
	assert.Equal(t, "chat-send", obs.events[0].Name)
	assert.Equal(t, "budget", obs.events[0].Fields["intent"])
}

func TestChatSession_Send_EmptyInputChangesNothing(t *testing.T) {
	s, err := NewChatSession(context.Background(), newLocalOrchestrator(newMemoryRepo(t)), ChatOptions{})
	require.NoError(t, err)

	reply, err := s.Send(context.Background(), "   ")
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, intelligence.ErrEmptyInput)
	assert.Len(t, s.Turns(), 1)
}

func TestChatSession_Send_RejectsWhileBusy(t *testing.T) {
	responder := &blockingResponder{entered: make(chan struct{}), release: make(chan struct{})}
	s, err := NewChatSession(context.Background(), responder, ChatOptions{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first")
		done <- err
	}()
	<-responder.entered

	assert.True(t, s.Busy())
	_, err = s.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, s.Reset(context.Background()), ErrBusy)

	close(responder.release)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Len(t, s.Turns(), 3)
}

func TestChatSession_Send_FailureKeepsReply(t *testing.T) {
	boom := errors.New("upstream down")
	s, err := NewChatSession(context.Background(), failingResponder{err: boom}, ChatOptions{})
	require.NoError(t, err)

	reply, err := s.Send(context.Background(), "hello")
	require.ErrorIs(t, err, boom)
	require.NotNil(t, reply)

	turns := s.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, domain.RoleSystem, turns[2].Role)
	assert.Equal(t, intelligence.ApologyText, turns[2].Content)
}

func TestChatSession_PersistsAndResumes(t *testing.T) {
	database := testutil.NewTestDB(t)
	turns := repository.NewSQLiteTurnRepo(database)
	orch := newLocalOrchestrator(newMemoryRepo(t))
	ctx := context.Background()

	s, err := NewChatSession(ctx, orch, ChatOptions{Turns: turns})
	require.NoError(t, err)
	_, err = s.Send(ctx, "hello")
	require.NoError(t, err)

	resumed, err := NewChatSession(ctx, orch, ChatOptions{Turns: turns, ConversationID: s.ConversationID()})
	require.NoError(t, err)
	require.Len(t, resumed.Turns(), 3)
	assert.Equal(t, s.Turns()[1].ID, resumed.Turns()[1].ID)
	assert.Equal(t, intelligence.GreetingText, resumed.Turns()[2].Content)
}

func TestChatSession_Reset(t *testing.T) {
	database := testutil.NewTestDB(t)
	turns := repository.NewSQLiteTurnRepo(database)
	ctx := context.Background()

	s, err := NewChatSession(ctx, newLocalOrchestrator(newMemoryRepo(t)), ChatOptions{Turns: turns})
	require.NoError(t, err)
	old := s.ConversationID()
	_, err = s.Send(ctx, "thanks")
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))
	assert.NotEqual(t, old, s.ConversationID())
	require.Len(t, s.Turns(), 1)
	assert.Equal(t, WelcomeText, s.Turns()[0].Content)

	stored, err := turns.List(ctx, old)
	require.NoError(t, err)
	assert.Empty(t, stored)
	stored, err = turns.List(ctx, s.ConversationID())
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestChatSession_Transcript(t *testing.T) {
	s, err := NewChatSession(context.Background(), newLocalOrchestrator(newMemoryRepo(t)), ChatOptions{})
	require.NoError(t, err)
	_, err = s.Send(context.Background(), "help")
	require.NoError(t, err)

	out := s.Transcript(time.UTC)
	assert.Contains(t, out, "BUDESHI Assistant:\n"+WelcomeText)
	assert.Contains(t, out, "You:\nhelp")
}

type failingResponder struct {
	err error
}

func (f failingResponder) Respond(_ context.Context, content string, _ []domain.Turn) (*intelligence.Reply, error) {
	return &intelligence.Reply{
		UserTurn: domain.NewTurn(domain.RoleUser, content),
		Turn:     domain.NewTurn(domain.RoleSystem, intelligence.ApologyText),
		Path:     intelligence.PathExternal,
	}, f.err
}

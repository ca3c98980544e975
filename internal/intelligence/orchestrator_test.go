package intelligence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/llm"
	"github.com/budeshi/budeshi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCompletionClient struct {
	mu       sync.Mutex
	text     string
	err      error
	calls    int
	messages []llm.Message
}

func (m *mockCompletionClient) Complete(_ context.Context, msgs []llm.Message) (*llm.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = msgs
	if m.err != nil {
		return nil, m.err
	}
	return &llm.Completion{Text: m.text, Model: "test"}, nil
}

type recordingResolutionObserver struct {
	events []ResolutionEvent
}

func (r *recordingResolutionObserver) OnResolution(_ context.Context, e ResolutionEvent) {
	r.events = append(r.events, e)
}

func priorTurns() []domain.Turn {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Turn{
		{ID: "t1", Role: domain.RoleBot, Content: "Hello! I'm the BUDESHI assistant.", CreatedAt: base},
		{ID: "t2", Role: domain.RoleUser, Content: "What projects are there?", CreatedAt: base.Add(time.Second)},
		{ID: "t3", Role: domain.RoleSystem, Content: ApologyText, CreatedAt: base.Add(2 * time.Second)},
		{ID: "t4", Role: domain.RoleBot, Content: "Here are some projects.", CreatedAt: base.Add(3 * time.Second)},
	}
}

func TestOrchestrator_EmptyInput(t *testing.T) {
	obs := &recordingResolutionObserver{}
	o := NewOrchestrator(Deps{Store: sampleStore(t), Observer: obs})

	for _, in := range []string{"", "   ", "\n\t"} {
		reply, err := o.Respond(context.Background(), in, nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Nil(t, reply)
	}
	assert.Empty(t, obs.events, "no state transition for rejected input")
}

func TestOrchestrator_NoCredentialUsesLocalPath(t *testing.T) {
	client := &mockCompletionClient{text: "remote"}
	o := NewOrchestrator(Deps{
		Store:       sampleStore(t),
		Client:      client,
		Credentials: llm.StaticCredential(""),
	})

	reply, err := o.Respond(context.Background(), "What's the status of the Abuja Light Rail Project?", nil)
	require.NoError(t, err)

	assert.Zero(t, client.calls, "never attempts the network call")
	assert.Equal(t, PathLocal, reply.Path)
	assert.Equal(t, IntentStatus, reply.Intent)
	assert.Equal(t, domain.RoleBot, reply.Turn.Role)
	assert.True(t, strings.HasPrefix(reply.Turn.Content, "✅ Status of Abuja Light Rail Project: Completed"))
	assert.Equal(t, domain.RoleUser, reply.UserTurn.Role)
	assert.Equal(t, "What's the status of the Abuja Light Rail Project?", reply.UserTurn.Content)
	assert.NotEqual(t, reply.UserTurn.ID, reply.Turn.ID)
}

func TestOrchestrator_TransportErrorKeepsHistory(t *testing.T) {
	client := &mockCompletionClient{err: &llm.TransportError{Err: errors.New("connection reset")}}
	obs := &recordingResolutionObserver{}
	o := NewOrchestrator(Deps{
		Store:       sampleStore(t),
		Client:      client,
		Credentials: llm.StaticCredential("sk-test"),
		Observer:    obs,
	})

	history := priorTurns()
	snapshot := append([]domain.Turn(nil), history...)

	reply, err := o.Respond(context.Background(), "budget?", history)

	var te *llm.TransportError
	require.ErrorAs(t, err, &te)
	require.NotNil(t, reply)
	assert.Equal(t, domain.RoleSystem, reply.Turn.Role)
	assert.Equal(t, ApologyText, reply.Turn.Content)
	assert.Equal(t, PathExternal, reply.Path)
	assert.Equal(t, snapshot, history, "history is never modified")
	assert.Equal(t, 1, client.calls)

	require.Len(t, obs.events, 2)
	assert.Equal(t, StateResolving, obs.events[0].State)
	assert.Equal(t, StateDone, obs.events[1].State)
	assert.Equal(t, OutcomeFailed, obs.events[1].Outcome)
}

func TestOrchestrator_UpstreamErrorIsApology(t *testing.T) {
	for _, failure := range []error{
		&llm.UpstreamError{StatusCode: 500},
		&llm.UpstreamError{StatusCode: 200, Err: llm.ErrMalformedResponse},
	} {
		o := NewOrchestrator(Deps{
			Store:       sampleStore(t),
			Client:      &mockCompletionClient{err: failure},
			Credentials: llm.StaticCredential("sk-test"),
		})
		reply, err := o.Respond(context.Background(), "hello", nil)
		assert.ErrorIs(t, err, failure)
		assert.Equal(t, ApologyText, reply.Turn.Content)
		assert.Equal(t, domain.RoleSystem, reply.Turn.Role)
	}
}

func TestOrchestrator_ExternalConversation(t *testing.T) {
	client := &mockCompletionClient{text: "**Abuja Light Rail** cost ₦52,000,000,000."}
	obs := &recordingResolutionObserver{}
	o := NewOrchestrator(Deps{
		Store:       sampleStore(t),
		Client:      client,
		Credentials: llm.StaticCredential("sk-test"),
		Observer:    obs,
	})

	reply, err := o.Respond(context.Background(), "How much did Abuja cost?", priorTurns())
	require.NoError(t, err)

	assert.Equal(t, PathExternal, reply.Path)
	assert.Equal(t, domain.RoleBot, reply.Turn.Role)
	assert.Equal(t, client.text, reply.Turn.Content)
	assert.Empty(t, reply.Intent)

	require.Len(t, client.messages, 5)
	assert.Equal(t, llm.RoleSystem, client.messages[0].Role)
	assert.Contains(t, client.messages[0].Content, "Abuja Light Rail Project")
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleAssistant, Content: "Hello! I'm the BUDESHI assistant."},
		{Role: llm.RoleUser, Content: "What projects are there?"},
		{Role: llm.RoleAssistant, Content: "Here are some projects."},
		{Role: llm.RoleUser, Content: "How much did Abuja cost?"},
	}, client.messages[1:])

	require.Len(t, obs.events, 2)
	assert.Equal(t, OutcomeAnswered, obs.events[1].Outcome)
	assert.Equal(t, PathExternal, obs.events[1].Path)
}

func TestOrchestrator_ExternalWithFailingStoreUsesFraming(t *testing.T) {
	client := &mockCompletionClient{text: "ok"}
	o := NewOrchestrator(Deps{
		Store:       testutil.FailingStore{Err: errors.New("offline")},
		Client:      client,
		Credentials: llm.StaticCredential("sk-test"),
	})

	_, err := o.Respond(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, FramingPrompt(nil), client.messages[0].Content)
}

func TestOrchestrator_ForcedModes(t *testing.T) {
	ctx := context.Background()

	client := &mockCompletionClient{text: "remote"}
	forcedExternal := NewOrchestrator(Deps{
		Store: sampleStore(t), Client: client, Credentials: llm.StaticCredential(""), Mode: ModeExternal,
	})
	reply, err := forcedExternal.Respond(ctx, "hello", nil)
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
	assert.Equal(t, domain.RoleSystem, reply.Turn.Role)
	assert.Equal(t, MissingKeyText, reply.Turn.Content)
	assert.Zero(t, client.calls)

	forcedLocal := NewOrchestrator(Deps{
		Store: sampleStore(t), Client: client, Credentials: llm.StaticCredential("sk-test"), Mode: ModeLocal,
	})
	reply, err = forcedLocal.Respond(ctx, "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, GreetingText, reply.Turn.Content)
	assert.Equal(t, IntentGreeting, reply.Intent)
	assert.Zero(t, client.calls)
}

func TestOrchestrator_AutoWithoutClientIsLocal(t *testing.T) {
	o := NewOrchestrator(Deps{Store: sampleStore(t), Credentials: llm.StaticCredential("sk-test")})
	assert.Equal(t, PathLocal, o.SelectPath(context.Background()))
	assert.Equal(t, ModeAuto, o.Mode())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" External ")
	require.NoError(t, err)
	assert.Equal(t, ModeExternal, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	_, err = ParseMode("remote")
	assert.Error(t, err)
}

func TestBuildConversation_OmitsSystemTurns(t *testing.T) {
	msgs := BuildConversation("prompt", priorTurns(), "next")
	for _, m := range msgs[1:] {
		assert.NotEqual(t, llm.RoleSystem, m.Role)
	}
	assert.Equal(t, "next", msgs[len(msgs)-1].Content)
}

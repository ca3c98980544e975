package intelligence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/llm"
	"github.com/budeshi/budeshi/internal/money"
	"github.com/budeshi/budeshi/internal/repository"
)

// ErrEmptyInput rejects a blank message before anything is produced.
var ErrEmptyInput = errors.New("empty input")

const (
	ApologyText    = "I'm sorry, I encountered an error processing your request. Please try again."
	MissingKeyText = "Please set your OpenAI API key to use the LLM-powered chat assistant."
)

// Mode selects how messages are resolved.
type Mode string

const (
	// ModeAuto uses the completion service whenever a credential is configured.
	ModeAuto     Mode = "auto"
	ModeLocal    Mode = "local"
	ModeExternal Mode = "external"
)

// ParseMode accepts auto, local or external; empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeLocal, ModeExternal:
		return m, nil
	default:
		return "", fmt.Errorf("unknown resolution mode %q (want auto, local or external)", s)
	}
}

// Path is the resolution path actually taken for a message.
type Path string

const (
	PathLocal    Path = "local"
	PathExternal Path = "external"
)

// State is the per-request resolution state.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateDone      State = "done"
)

// Outcome labels how a resolution finished.
const (
	OutcomeAnswered          = "answered"
	OutcomeFailed            = "failed"
	OutcomeMissingCredential = "missing_credential"
)

// ResolutionEvent is emitted on entering Resolving and on reaching Done.
// Path, Intent, Outcome, Duration and Err are only set for Done.
type ResolutionEvent struct {
	State    State
	Path     Path
	Intent   Intent
	Outcome  string
	Duration time.Duration
	Err      error
}

// ResolutionObserver receives resolution state changes.
type ResolutionObserver interface {
	OnResolution(ctx context.Context, event ResolutionEvent)
}

type NoopResolutionObserver struct{}

func (NoopResolutionObserver) OnResolution(context.Context, ResolutionEvent) {}

// Reply carries the turns produced for one message. The caller owns the
// conversation and appends UserTurn then Turn.
type Reply struct {
	UserTurn domain.Turn
	Turn     domain.Turn
	Path     Path
	Intent   Intent
}

// Deps is everything an Orchestrator needs. Client and Credentials may be nil
// when only local resolution is wanted.
type Deps struct {
	Store       repository.ProjectStore
	Client      llm.CompletionClient
	Credentials llm.CredentialSource
	Money       *money.Formatter
	Mode        Mode
	Observer    ResolutionObserver
	Logger      *slog.Logger
}

// Orchestrator turns one user message plus prior turns into exactly one reply.
// It never mutates the history it is given.
type Orchestrator struct {
	store    repository.ProjectStore
	client   llm.CompletionClient
	creds    llm.CredentialSource
	money    *money.Formatter
	mode     Mode
	observer ResolutionObserver
	logger   *slog.Logger
	local    *Synthesizer
}

func NewOrchestrator(d Deps) *Orchestrator {
	if d.Money == nil {
		d.Money = money.Default()
	}
	if d.Mode == "" {
		d.Mode = ModeAuto
	}
	if d.Observer == nil {
		d.Observer = NoopResolutionObserver{}
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{
		store:    d.Store,
		client:   d.Client,
		creds:    d.Credentials,
		money:    d.Money,
		mode:     d.Mode,
		observer: d.Observer,
		logger:   d.Logger,
		local:    NewSynthesizer(d.Store, d.Money, d.Logger),
	}
}

func (o *Orchestrator) Mode() Mode { return o.mode }

// SelectPath reports the path the next message would take.
func (o *Orchestrator) SelectPath(ctx context.Context) Path {
	switch o.mode {
	case ModeLocal:
		return PathLocal
	case ModeExternal:
		return PathExternal
	}
	if o.client != nil && llm.HasCredential(ctx, o.creds) {
		return PathExternal
	}
	return PathLocal
}

// Respond resolves content. On an external failure the reply holds a system
// turn with ApologyText (or MissingKeyText) and the underlying error is
// returned alongside it for notification.
func (o *Orchestrator) Respond(ctx context.Context, content string, history []domain.Turn) (*Reply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyInput
	}

	start := time.Now()
	reply := &Reply{UserTurn: domain.NewTurn(domain.RoleUser, content)}
	o.observer.OnResolution(ctx, ResolutionEvent{State: StateResolving})

	reply.Path = o.SelectPath(ctx)
	var err error
	outcome := OutcomeAnswered
	switch reply.Path {
	case PathLocal:
		var text string
		reply.Intent, text = o.local.Resolve(ctx, content)
		reply.Turn = domain.NewTurn(domain.RoleBot, text)
	case PathExternal:
		var text string
		text, err = o.resolveExternal(ctx, content, history)
		switch {
		case errors.Is(err, llm.ErrMissingCredential):
			outcome = OutcomeMissingCredential
			reply.Turn = domain.NewTurn(domain.RoleSystem, MissingKeyText)
		case err != nil:
			outcome = OutcomeFailed
			reply.Turn = domain.NewTurn(domain.RoleSystem, ApologyText)
			o.logger.Error("external completion failed", "error", err, "error_code", llm.ErrorCode(err))
		default:
			reply.Turn = domain.NewTurn(domain.RoleBot, text)
		}
	}

	o.observer.OnResolution(ctx, ResolutionEvent{
		State:    StateDone,
		Path:     reply.Path,
		Intent:   reply.Intent,
		Outcome:  outcome,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return reply, fmt.Errorf("external completion: %w", err)
	}
	return reply, nil
}

func (o *Orchestrator) resolveExternal(ctx context.Context, content string, history []domain.Turn) (string, error) {
	if o.client == nil {
		return "", llm.ErrMissingCredential
	}
	if !llm.HasCredential(ctx, o.creds) {
		return "", llm.ErrMissingCredential
	}
	prompt := GroundingPrompt(ctx, o.store, o.money, o.logger)
	completion, err := o.client.Complete(ctx, BuildConversation(prompt, history, content))
	if err != nil {
		return "", err
	}
	return completion.Text, nil
}

// BuildConversation assembles system prompt, prior turns and the new user
// message. Bot turns become assistant messages; system turns (apologies,
// notices) are not sent.
func BuildConversation(systemPrompt string, history []domain.Turn, content string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, t := range history {
		switch t.Role {
		case domain.RoleUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: t.Content})
		case domain.RoleBot:
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: t.Content})
		}
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: content})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/export"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/repository"
	"github.com/google/uuid"
)

// ErrBusy is returned when a message arrives while another is resolving.
var ErrBusy = errors.New("a message is already being resolved")

const WelcomeText = "Hello! I'm the BUDESHI assistant. I can help you find information about government procurement projects. What would you like to know?"

// ChatOptions configures a ChatSession. Turns enables persistence; with a
// ConversationID the stored conversation is resumed.
type ChatOptions struct {
	Turns          repository.TurnRepo
	ConversationID string
	Observer       UseCaseObserver
	Logger         *slog.Logger
}

// ChatSession owns one conversation: its ordered turns and the busy flag
// that admits a single in-flight message.
type ChatSession struct {
	responder Responder
	store     repository.TurnRepo
	observer  UseCaseObserver
	logger    *slog.Logger

	mu             sync.Mutex
	busy           bool
	conversationID string
	turns          []domain.Turn
}

func NewChatSession(ctx context.Context, responder Responder, opts ChatOptions) (*ChatSession, error) {
	s := &ChatSession{
		responder: responder,
		store:     opts.Turns,
		observer:  useCaseObserverOrNoop([]UseCaseObserver{opts.Observer}),
		logger:    opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if opts.ConversationID != "" && s.store != nil {
		turns, err := s.store.List(ctx, opts.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("loading conversation: %w", err)
		}
		if len(turns) > 0 {
			s.conversationID = opts.ConversationID
			s.turns = turns
			return s, nil
		}
	}

	s.conversationID = opts.ConversationID
	if s.conversationID == "" {
		s.conversationID = uuid.New().String()
	}
	if err := s.start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// start seeds the welcome turn under a new conversation. Callers own s.
func (s *ChatSession) start(ctx context.Context) error {
	welcome := domain.NewTurn(domain.RoleBot, WelcomeText)
	s.turns = []domain.Turn{welcome}
	if s.store != nil {
		if err := s.store.Append(ctx, s.conversationID, welcome); err != nil {
			return fmt.Errorf("saving welcome turn: %w", err)
		}
	}
	return nil
}

func (s *ChatSession) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Turns returns a copy of the conversation so far.
func (s *ChatSession) Turns() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Turn(nil), s.turns...)
}

func (s *ChatSession) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Send resolves content against the conversation so far. A non-nil reply
// has already been appended (user turn, then bot or system turn) even when
// err reports a completion failure. Blank input returns
// intelligence.ErrEmptyInput and changes nothing.
func (s *ChatSession) Send(ctx context.Context, content string) (reply *intelligence.Reply, err error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	history := append([]domain.Turn(nil), s.turns...)
	convID := s.conversationID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	startedAt := time.Now().UTC()
	fields := map[string]any{"conversation_id": convID}
	defer track(ctx, s.observer, "chat-send", startedAt, fields, &err)

	reply, err = s.responder.Respond(ctx, content, history)
	if reply == nil {
		return nil, err
	}
	fields["path"] = string(reply.Path)
	if reply.Intent != "" {
		fields["intent"] = string(reply.Intent)
	}

	s.mu.Lock()
	if s.conversationID == convID {
		s.turns = append(s.turns, reply.UserTurn, reply.Turn)
	}
	s.mu.Unlock()

	s.persist(ctx, convID, reply.UserTurn, reply.Turn)
	return reply, err
}

// persist stores turns best-effort; the in-memory conversation stays
// authoritative for this session.
func (s *ChatSession) persist(ctx context.Context, convID string, turns ...domain.Turn) {
	if s.store == nil {
		return
	}
	for _, t := range turns {
		if err := s.store.Append(ctx, convID, t); err != nil {
			s.logger.WarnContext(ctx, "turn not persisted", "conversation_id", convID, "turn_id", t.ID, "error", err)
			return
		}
	}
}

// Reset clears the conversation and starts a new one with a fresh welcome
// turn. The stored history of the old conversation is deleted.
func (s *ChatSession) Reset(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}

	startedAt := time.Now().UTC()
	old := s.conversationID
	defer track(ctx, s.observer, "chat-reset", startedAt, map[string]any{"conversation_id": old}, &err)

	if s.store != nil {
		if err = s.store.DeleteConversation(ctx, old); err != nil {
			return fmt.Errorf("clearing conversation: %w", err)
		}
	}
	s.conversationID = uuid.New().String()
	return s.start(ctx)
}

// Transcript renders the conversation as plain text in loc.
func (s *ChatSession) Transcript(loc *time.Location) string {
	return export.Transcript(s.Turns(), loc)
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/pdf-agent/backend/internal/model/chat"
	"github.com/zhouzirui/pdf-agent/backend/internal/service/ai"
)

var (
	ErrMessageRequired = errors.New("message is required")
	ErrAgentFailure    = errors.New("agent failed to answer")
)

// Config controls how user input is composed.
type Config struct {
	SystemPrompt string
	// AnnotateDocuments appends the referenced document names to the user
	// message. Off by default: the names are computed and logged only.
	AnnotateDocuments bool
}

// Service runs conversational turns against a Reasoner, keeping each
// session's history in the injected Store.
type Service struct {
	sessions Store
	reasoner ai.Reasoner
	cfg      Config
	log      *zap.Logger
}

// NewService wires the session manager.
func NewService(sessions Store, reasoner ai.Reasoner, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		sessions: sessions,
		reasoner: reasoner,
		cfg:      cfg,
		log:      log,
	}
}

// Chat submits message with the session's full history and returns the
// agent's final answer. The whole exchange is appended to the session only
// when the agent succeeds.
func (s *Service) Chat(ctx context.Context, sessionKey, message string, documents []string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrMessageRequired
	}

	history, err := s.sessions.Load(ctx, sessionKey)
	if err != nil {
		return "", fmt.Errorf("failed to load session %s: %w", sessionKey, err)
	}

	input := message
	if annotation := documentAnnotation(documents); annotation != "" {
		if s.cfg.AnnotateDocuments {
			input += annotation
		} else {
			s.log.Debug("document annotation not applied", zap.String("session", sessionKey), zap.Strings("documents", documents))
		}
	}

	result, err := s.reasoner.Invoke(ctx, ai.Request{
		SessionKey:   sessionKey,
		History:      ToMessages(history),
		Input:        schema.UserMessage(input),
		SystemPrompt: s.cfg.SystemPrompt,
	})
	if err != nil {
		s.log.Error("agent failure", zap.String("session", sessionKey), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrAgentFailure, err)
	}
	if result == nil || result.Final == nil {
		return "", fmt.Errorf("%w: empty result", ErrAgentFailure)
	}

	turns := make([]chat.Turn, 0, len(result.Messages)+2)
	turns = append(turns, chat.Turn{Role: chat.RoleUser, Content: input})
	turns = append(turns, FromMessages(result.Messages)...)
	turns = append(turns, chat.Turn{Role: chat.RoleAgent, Content: result.Final.Content})

	if err := s.sessions.Append(ctx, sessionKey, turns...); err != nil {
		return "", fmt.Errorf("failed to save session %s: %w", sessionKey, err)
	}

	return result.Final.Content, nil
}

// History returns the turns recorded for sessionKey.
func (s *Service) History(ctx context.Context, sessionKey string) ([]chat.Turn, error) {
	return s.sessions.Load(ctx, sessionKey)
}

// Session returns the metadata of sessionKey if it has been used.
func (s *Service) Session(sessionKey string) (chat.Session, bool) {
	return s.sessions.Session(sessionKey)
}

// Reset clears the history of sessionKey.
func (s *Service) Reset(ctx context.Context, sessionKey string) error {
	if err := s.sessions.Reset(ctx, sessionKey); err != nil {
		return err
	}
	s.log.Info("session reset", zap.String("session", sessionKey))
	return nil
}

func documentAnnotation(documents []string) string {
	if len(documents) == 0 {
		return ""
	}
	names := make([]string, 0, len(documents))
	for _, doc := range documents {
		names = append(names, filepath.Base(doc))
	}
	return fmt.Sprintf("\n\nI have uploaded these documents: %s.", strings.Join(names, ", "))
}

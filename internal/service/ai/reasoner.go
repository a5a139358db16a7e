package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/pdf-agent/backend/internal/service/tools"
)

// Request is one reasoning call: prior history plus the new user input.
type Request struct {
	SessionKey   string
	History      []*schema.Message
	Input        *schema.Message
	SystemPrompt string
}

// Result carries the final answer and the intermediate tool-call and tool
// messages the agent produced on the way, in order.
type Result struct {
	Final    *schema.Message
	Messages []*schema.Message
}

// Reasoner decides, possibly after calling tools, how to answer a message.
type Reasoner interface {
	Invoke(ctx context.Context, req Request) (*Result, error)
}

// Service is a Reasoner backed by an eino ReAct agent.
type Service struct {
	agent *react.Agent
	log   *zap.Logger
}

type traceKey struct{}

// trace is per-call state shared with the agent's message modifier.
type trace struct {
	systemPrompt string
	last         []*schema.Message
}

// NewService builds the ReAct agent over chatModel and the registered tools.
func NewService(ctx context.Context, chatModel model.ChatModel, registry *tools.Registry, maxSteps int, log *zap.Logger) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: toolCalling(chatModel),
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: registry.BaseTools(),
		},
		MessageModifier: modifyMessages,
		MaxStep:         maxSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create react agent: %w", err)
	}

	return &Service{agent: agent, log: log}, nil
}

// toolCalling adapts a model that binds tools in place, such as the ark
// chat model, to the ToolCallingChatModel the agent expects.
func toolCalling(m model.ChatModel) model.ToolCallingChatModel {
	if tc, ok := m.(model.ToolCallingChatModel); ok {
		return tc
	}
	return &boundModel{ChatModel: m}
}

type boundModel struct {
	model.ChatModel
}

func (b *boundModel) WithTools(infos []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if err := b.ChatModel.BindTools(infos); err != nil {
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}
	return b, nil
}

// modifyMessages sees the agent's accumulated messages before every model
// call. It records them for the caller and prepends the system prompt.
func modifyMessages(ctx context.Context, input []*schema.Message) []*schema.Message {
	t, _ := ctx.Value(traceKey{}).(*trace)
	if t == nil {
		return input
	}
	t.last = append(t.last[:0], input...)

	if t.systemPrompt == "" {
		return input
	}
	out := make([]*schema.Message, 0, len(input)+1)
	out = append(out, schema.SystemMessage(t.systemPrompt))
	return append(out, input...)
}

// Invoke implements Reasoner.
func (s *Service) Invoke(ctx context.Context, req Request) (*Result, error) {
	if req.Input == nil {
		return nil, errors.New("input message is required")
	}

	messages := make([]*schema.Message, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, req.Input)

	t := &trace{systemPrompt: req.SystemPrompt}
	final, err := s.agent.Generate(context.WithValue(ctx, traceKey{}, t), messages)
	if err != nil {
		return nil, fmt.Errorf("failed to run agent: %w", err)
	}

	var intermediate []*schema.Message
	if len(t.last) > len(messages) {
		intermediate = append(intermediate, t.last[len(messages):]...)
	}

	s.log.Info("agent answered",
		zap.String("session", req.SessionKey),
		zap.Int("history", len(req.History)),
		zap.Int("tool_messages", len(intermediate)),
		zap.Int("length", len(final.Content)))

	return &Result{Final: final, Messages: intermediate}, nil
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// InvokeFunc is the typed body of a tool. Failures the agent should read
// are returned as text, not as an error.
type InvokeFunc[T any] func(ctx context.Context, input T) (string, error)

type typedTool[T any] struct {
	info *schema.ToolInfo
	fn   InvokeFunc[T]
}

// New describes a tool to the agent: its name, a description the model uses
// to decide when to call it, and its argument schema.
func New[T any](name, desc string, params map[string]*schema.ParameterInfo, fn InvokeFunc[T]) tool.InvokableTool {
	if params == nil {
		params = map[string]*schema.ParameterInfo{}
	}
	return &typedTool[T]{
		info: &schema.ToolInfo{
			Name:        name,
			Desc:        desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		},
		fn: fn,
	}
}

func (t *typedTool[T]) Info(_ context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

func (t *typedTool[T]) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input T
	if raw := strings.TrimSpace(argumentsInJSON); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", t.info.Name, err), nil
		}
	}
	return t.fn(ctx, input)
}

// Registry maps tool names to callable tools, in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]tool.InvokableTool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]tool.InvokableTool)}
}

// Register adds t; names must be unique.
func (r *Registry) Register(t tool.InvokableTool) error {
	info, err := t.Info(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read tool info: %w", err)
	}
	if info.Name == "" {
		return fmt.Errorf("tool name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[info.Name]; exists {
		return fmt.Errorf("tool %q already registered", info.Name)
	}
	r.tools[info.Name] = t
	r.order = append(r.order, info.Name)
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (tool.InvokableTool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names lists registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// BaseTools returns the tools in the form the agent's tools node expects.
func (r *Registry) BaseTools() []tool.BaseTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tool.BaseTool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// invoke runs a tool by name with JSON arguments.
func (r *Registry) invoke(ctx context.Context, name, argumentsInJSON string) (string, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return t.InvokableRun(ctx, argumentsInJSON)
}

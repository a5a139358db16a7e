package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/pdf-agent/backend/internal/model/persona"
	"github.com/zhouzirui/pdf-agent/backend/internal/service/tools"
)

// PromptManager turns a persona into the agent's system prompt.
type PromptManager struct {
	toolNames []string
}

// NewPromptManager mentions the given tools in the prompts it builds.
func NewPromptManager(toolNames []string) *PromptManager {
	return &PromptManager{toolNames: append([]string(nil), toolNames...)}
}

// BuildSystemPrompt returns the static instruction for p.
func (pm *PromptManager) BuildSystemPrompt(p persona.Persona) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Instructions: %s", strings.TrimSpace(p.Instructions))
	if p.Tone != "" {
		fmt.Fprintf(&builder, "\nTone: %s.", p.Tone)
	}

	if hints := pm.toolHints(); len(hints) > 0 {
		builder.WriteString("\n\nYou can use these tools:\n- ")
		builder.WriteString(strings.Join(hints, "\n- "))
	}
	return builder.String()
}

func (pm *PromptManager) toolHints() []string {
	hints := make([]string, 0, len(pm.toolNames))
	for _, name := range pm.toolNames {
		switch name {
		case tools.LoadDocumentName:
			hints = append(hints, name+": read one uploaded PDF when the user asks about it")
		case tools.AnalyzeDocumentsName:
			hints = append(hints, name+": read several uploaded PDFs at once")
		case tools.ListDocumentsName:
			hints = append(hints, name+": find out which documents were uploaded")
		case tools.WebSearchName:
			hints = append(hints, name+": look up information the documents do not contain")
		default:
			hints = append(hints, name)
		}
	}
	return hints
}

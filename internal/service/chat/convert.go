package chat

import (
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/pdf-agent/backend/internal/model/chat"
)

// ToMessages renders stored turns as model messages.
func ToMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	messages := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(turn.Content))
		case chat.RoleAgent:
			var calls []schema.ToolCall
			for _, call := range turn.ToolCalls {
				calls = append(calls, schema.ToolCall{
					ID:       call.ID,
					Type:     "function",
					Function: schema.FunctionCall{Name: call.Name, Arguments: call.Arguments},
				})
			}
			messages = append(messages, schema.AssistantMessage(turn.Content, calls))
		case chat.RoleTool:
			messages = append(messages, schema.ToolMessage(turn.Content, turn.ToolCallID))
		}
	}
	return messages
}

// FromMessages converts the agent's intermediate messages into turns. Tool
// turns take their name from the call they answer.
func FromMessages(messages []*schema.Message) []chat.Turn {
	names := make(map[string]string)
	turns := make([]chat.Turn, 0, len(messages))

	for _, msg := range messages {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.Assistant:
			turn := chat.Turn{Role: chat.RoleAgent, Content: msg.Content}
			for _, call := range msg.ToolCalls {
				names[call.ID] = call.Function.Name
				turn.ToolCalls = append(turn.ToolCalls, chat.ToolCall{
					ID:        call.ID,
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				})
			}
			turns = append(turns, turn)
		case schema.Tool:
			turns = append(turns, chat.Turn{
				Role:       chat.RoleTool,
				Content:    msg.Content,
				ToolCallID: msg.ToolCallID,
				ToolName:   names[msg.ToolCallID],
			})
		case schema.User:
			turns = append(turns, chat.Turn{Role: chat.RoleUser, Content: msg.Content})
		}
	}
	return turns
}

package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/pdf-agent/backend/internal/service/search"
)

const WebSearchName = "web_search"

type webSearchInput struct {
	Query string `json:"query"`
}

// NewWebSearchTool exposes a Searcher to the agent.
func NewWebSearchTool(searcher search.Searcher) tool.InvokableTool {
	return New(WebSearchName,
		"Searches the web and returns the top results. Use it for current events or facts that the uploaded documents do not contain.",
		map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "The search query.", Required: true},
		},
		func(ctx context.Context, in webSearchInput) (string, error) {
			results, err := searcher.Search(ctx, in.Query)
			if err != nil {
				return fmt.Sprintf("Error: web search failed: %v", err), nil
			}
			return search.Format(results), nil
		})
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ArkClient runs completions through an eino chain over an Ark chat
// model.
type ArkClient struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkClient compiles the chat chain for the supplied model.
func NewArkClient(ctx context.Context, chatModel model.ChatModel) (*ArkClient, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkClient{chain: runnable}, nil
}

// Complete invokes the chain and returns the trimmed reply text.
func (c *ArkClient) Complete(ctx context.Context, promptText string) (string, error) {
	response, err := c.chain.Invoke(ctx, map[string]any{"query": promptText})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}

// Package llm provides the provider clients and the turn runner that drive
// tool-calling conversations for archagent. Everything here runs on
// background goroutines; document access happens only through the bridge.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"archagent/internal/logger"
	"archagent/pkg/agenttypes"
)

// defaultMaxTokens bounds one reply; the agent loops on tool calls anyway.
const defaultMaxTokens = 4096

// AnthropicClient implements the LLMClient interface for Anthropic's API.
// It provides lazy initialization and translates the tool registry's schemas
// into Anthropic tool-use wire format.
type AnthropicClient struct {
	apiKey string
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client with lazy initialization.
// The underlying client is created only when the first request is made.
func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{apiKey: apiKey}
}

// GetProviderName returns the provider name for this client.
func (c *AnthropicClient) GetProviderName() string {
	return "anthropic"
}

// IsConfigured returns true if the client has a valid API key.
func (c *AnthropicClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *AnthropicClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}
	if c.apiKey == "" {
		return fmt.Errorf("anthropic API key not configured")
	}
	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))
	c.client = &client
	logger.Debug("Anthropic client initialized", "provider", "anthropic")
	return nil
}

// SendTurn sends the conversation and tool definitions to Anthropic and
// parses the reply, including any requested tool calls.
func (c *AnthropicClient) SendTurn(ctx context.Context, model string, messages []agenttypes.Message, tools []agenttypes.Tool) (*agenttypes.TurnReply, error) {
	logger.Debug("Anthropic SendTurn starting", "model", model, "messages", len(messages), "tools", len(tools))

	if err := c.initializeClientIfNeeded(); err != nil {
		return nil, fmt.Errorf("failed to initialize Anthropic client: %w", err)
	}

	converted, systemPrompt, err := convertMessagesToAnthropic(messages)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: defaultMaxTokens,
		Messages:  converted,
		Tools:     convertToolsToAnthropic(tools),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Anthropic request failed", "error", err)
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	reply := &agenttypes.TurnReply{StopReason: string(message.StopReason)}
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			if reply.Text != "" {
				reply.Text += "\n"
			}
			reply.Text += b.Text
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if len(b.Input) > 0 {
				if err := json.Unmarshal(b.Input, &args); err != nil {
					return nil, fmt.Errorf("anthropic tool call %s: malformed arguments: %w", b.Name, err)
				}
			}
			reply.ToolCalls = append(reply.ToolCalls, agenttypes.ToolInvocation{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}
	logger.Debug("Anthropic SendTurn done", "stop_reason", reply.StopReason, "tool_calls", len(reply.ToolCalls))
	return reply, nil
}

// convertToolsToAnthropic maps registered tools to Anthropic tool params.
func convertToolsToAnthropic(tools []agenttypes.Tool) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		schema := tool.InputSchema()
		inputSchema := anthropic.ToolInputSchemaParam{
			Properties: schema["properties"],
		}
		if required, ok := schema["required"]; ok {
			inputSchema.ExtraFields = map[string]any{"required": required}
		}
		toolParam := anthropic.ToolParam{
			Name:        tool.Name(),
			Description: anthropic.String(tool.Description()),
			InputSchema: inputSchema,
		}
		params = append(params, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return params
}

// convertMessagesToAnthropic rebuilds the conversation in Anthropic wire
// format. System messages are lifted into the system prompt; tool results
// become tool_result blocks in user messages.
func convertMessagesToAnthropic(messages []agenttypes.Message) ([]anthropic.MessageParam, string, error) {
	var (
		converted    []anthropic.MessageParam
		systemPrompt string
	)
	for _, msg := range messages {
		switch msg.Role {
		case agenttypes.RoleSystem:
			if systemPrompt != "" {
				systemPrompt += "\n\n"
			}
			systemPrompt += msg.Content
		case agenttypes.RoleUser:
			converted = append(converted, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case agenttypes.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				input, err := json.Marshal(call.Arguments)
				if err != nil {
					return nil, "", fmt.Errorf("marshal tool call %s arguments: %w", call.Name, err)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, json.RawMessage(input), call.Name))
			}
			if len(blocks) > 0 {
				converted = append(converted, anthropic.NewAssistantMessage(blocks...))
			}
		case agenttypes.RoleTool:
			converted = append(converted, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false)))
		}
	}
	return converted, systemPrompt, nil
}

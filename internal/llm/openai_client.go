package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"archagent/internal/logger"
	"archagent/pkg/agenttypes"
)

// OpenAIClient implements the LLMClient interface for OpenAI's API.
// It provides lazy initialization and translates the tool registry's schemas
// into OpenAI function-calling wire format.
type OpenAIClient struct {
	apiKey string
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client with lazy initialization.
// The underlying client is created only when the first request is made.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey}
}

// GetProviderName returns the provider name for this client.
func (c *OpenAIClient) GetProviderName() string {
	return "openai"
}

// IsConfigured returns true if the client has a valid API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *OpenAIClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil
	}
	if c.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	client := openai.NewClient(option.WithAPIKey(c.apiKey))
	c.client = &client
	logger.Debug("OpenAI client initialized", "provider", "openai")
	return nil
}

// SendTurn sends the conversation and tool definitions to OpenAI and parses
// the reply, including any requested tool calls.
func (c *OpenAIClient) SendTurn(ctx context.Context, model string, messages []agenttypes.Message, tools []agenttypes.Tool) (*agenttypes.TurnReply, error) {
	logger.Debug("OpenAI SendTurn starting", "model", model, "messages", len(messages), "tools", len(tools))

	if err := c.initializeClientIfNeeded(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	converted, err := convertMessagesToOpenAI(messages)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: converted,
		Tools:    convertToolsToOpenAI(tools),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	choice := completion.Choices[0]
	reply := &agenttypes.TurnReply{
		Text:       choice.Message.Content,
		StopReason: string(choice.FinishReason),
	}
	for _, call := range choice.Message.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("openai tool call %s: malformed arguments: %w", call.Function.Name, err)
			}
		}
		reply.ToolCalls = append(reply.ToolCalls, agenttypes.ToolInvocation{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	logger.Debug("OpenAI SendTurn done", "finish_reason", reply.StopReason, "tool_calls", len(reply.ToolCalls))
	return reply, nil
}

// convertToolsToOpenAI maps registered tools to OpenAI function params.
func convertToolsToOpenAI(tools []agenttypes.Tool) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, tool := range tools {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name(),
				Description: openai.String(tool.Description()),
				Parameters:  openai.FunctionParameters(tool.InputSchema()),
			},
		})
	}
	return params
}

// convertMessagesToOpenAI rebuilds the conversation in OpenAI wire format.
// Assistant tool calls and tool-result messages keep their call ids so the
// API can pair them.
func convertMessagesToOpenAI(messages []agenttypes.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case agenttypes.RoleSystem:
			converted = append(converted, openai.SystemMessage(msg.Content))
		case agenttypes.RoleUser:
			converted = append(converted, openai.UserMessage(msg.Content))
		case agenttypes.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				converted = append(converted, openai.AssistantMessage(msg.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}
			for _, call := range msg.ToolCalls {
				args, err := json.Marshal(call.Arguments)
				if err != nil {
					return nil, fmt.Errorf("marshal tool call %s arguments: %w", call.Name, err)
				}
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
			converted = append(converted, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case agenttypes.RoleTool:
			converted = append(converted, openai.ToolMessage(msg.Content, msg.ToolCallID))
		}
	}
	return converted, nil
}

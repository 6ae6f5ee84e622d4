package llm

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"archagent/internal/bridge"
	"archagent/internal/logger"
	"archagent/internal/tools"
	"archagent/pkg/agenttypes"
)

// maxToolRounds bounds how many tool-call round trips one user turn may take
// before the runner gives up, so a confused model cannot loop forever.
const maxToolRounds = 16

// Approver collects user approval for one confirmation-gated invocation,
// given its dry-run description. Implemented by the UI layer; called on the
// background turn goroutine before dispatch.
type Approver func(inv agenttypes.ToolInvocation, dryRun string) bool

// TurnRunner drives one conversation against a provider: it sends messages,
// and whenever the reply carries tool calls it collects approvals, marshals
// the whole batch through the bridge onto the main thread, and feeds the
// results back until the model answers with text only.
type TurnRunner struct {
	client   agenttypes.LLMClient
	model    string
	registry *tools.Registry
	orch     *tools.Orchestrator
	bridge   *bridge.Bridge

	approvals *tools.ApprovalStore
	approver  Approver
}

// NewTurnRunner wires a turn runner. approver may be nil, in which case every
// confirmation-gated tool is refused by the orchestrator.
func NewTurnRunner(client agenttypes.LLMClient, model string, registry *tools.Registry, orch *tools.Orchestrator, b *bridge.Bridge, approvals *tools.ApprovalStore, approver Approver) *TurnRunner {
	return &TurnRunner{
		client:    client,
		model:     model,
		registry:  registry,
		orch:      orch,
		bridge:    b,
		approvals: approvals,
		approver:  approver,
	}
}

// RunTurn processes one user turn. It returns the full updated conversation
// and the model's final text reply.
func (r *TurnRunner) RunTurn(ctx context.Context, messages []agenttypes.Message, userInput string) ([]agenttypes.Message, string, error) {
	messages = append(messages, agenttypes.Message{Role: agenttypes.RoleUser, Content: userInput})
	registered := r.registry.GetAll()

	for round := 0; round < maxToolRounds; round++ {
		reply, err := r.client.SendTurn(ctx, r.model, messages, registered)
		if err != nil {
			return messages, "", err
		}

		messages = append(messages, agenttypes.Message{
			Role:      agenttypes.RoleAssistant,
			Content:   reply.Text,
			ToolCalls: reply.ToolCalls,
		})
		if !reply.HasToolCalls() {
			return messages, reply.Text, nil
		}

		invocations := r.stampInvocationIDs(reply.ToolCalls)
		r.collectApprovals(invocations)

		results, err := bridge.RunValue(ctx, r.bridge, func(sess agenttypes.Session) ([]agenttypes.ToolResult, error) {
			return r.orch.ExecuteBatch(sess, invocations), nil
		})
		if err != nil {
			return messages, "", fmt.Errorf("tool batch dispatch failed: %w", err)
		}

		for i, result := range results {
			messages = append(messages, agenttypes.Message{
				Role:       agenttypes.RoleTool,
				Content:    result.Text(),
				ToolCallID: invocations[i].ID,
			})
		}
	}
	return messages, "", fmt.Errorf("turn exceeded %d tool rounds without a final reply", maxToolRounds)
}

// stampInvocationIDs fills in ids for providers that omit them, so approvals
// and tool results can be keyed per invocation.
func (r *TurnRunner) stampInvocationIDs(calls []agenttypes.ToolInvocation) []agenttypes.ToolInvocation {
	stamped := make([]agenttypes.ToolInvocation, len(calls))
	copy(stamped, calls)
	for i := range stamped {
		if stamped[i].ID == "" {
			stamped[i].ID = uuid.New().String()
		}
	}
	return stamped
}

// collectApprovals asks the approver about every confirmation-gated call in
// the batch and records granted approvals for the orchestrator to consume.
func (r *TurnRunner) collectApprovals(invocations []agenttypes.ToolInvocation) {
	if r.approver == nil {
		return
	}
	for _, inv := range invocations {
		tool, ok := r.registry.Get(inv.Name)
		if !ok || !tool.RequiresConfirmation() {
			continue
		}
		dryRun := tool.DryRun(inv.Arguments)
		if r.approver(inv, dryRun) {
			logger.Debug("Invocation approved", "tool", inv.Name, "invocation", inv.ID)
			r.approvals.Approve(inv.ID)
		} else {
			logger.Debug("Invocation declined", "tool", inv.Name, "invocation", inv.ID)
		}
	}
}

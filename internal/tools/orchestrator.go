package tools

import (
	"github.com/charmbracelet/log"

	"archagent/internal/logger"
	"archagent/internal/txn"
	"archagent/pkg/agenttypes"
)

// Orchestrator executes tool invocations against the live document. It is
// the enforcement point for transaction scoping, undo grouping, confirmation
// gating, and post-execution selection feedback. All execution methods run on
// the host main thread, inside a bridge command.
type Orchestrator struct {
	registry  *Registry
	txns      *txn.GroupManager
	approvals *ApprovalStore
	log       *log.Logger
}

// NewOrchestrator creates an orchestrator over the given registry,
// transaction manager, and approval store.
func NewOrchestrator(registry *Registry, txns *txn.GroupManager, approvals *ApprovalStore) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		txns:      txns,
		approvals: approvals,
		log:       logger.NewStyledLogger("Dispatch"),
	}
}

// ExecuteTool runs a single tool invocation. Mutating tools run inside a
// transaction scope named after the tool, committed on success and rolled
// back on failure; query and UI tools run unscoped. Tool failures of every
// kind come back as a failed ToolResult, never as an error or panic.
func (o *Orchestrator) ExecuteTool(sess agenttypes.Session, inv agenttypes.ToolInvocation) agenttypes.ToolResult {
	tool, result, ok := o.resolve(inv)
	if !ok {
		return result
	}

	logger.ToolExecution(inv.Name, inv.Arguments)
	if !tool.RequiresTransaction() {
		return safeExecute(tool, sess, inv.Arguments)
	}

	result = o.executeScoped(sess, tool, inv.Arguments)
	if result.Success {
		o.selectAffected(sess, result.AffectedElements)
	}
	return result
}

// ExecuteBatch runs every invocation of one LLM turn, in order. When any tool
// in the batch mutates the model, the whole batch runs inside a single
// transaction group so it lands as one undo entry. The failure policy is
// abort-on-first-failure: remaining tools are skipped and the group is rolled
// back, leaving no partial mutation. A batch with no mutating tool runs
// unscoped and continues past individual failures.
func (o *Orchestrator) ExecuteBatch(sess agenttypes.Session, invs []agenttypes.ToolInvocation) []agenttypes.ToolResult {
	if len(invs) == 0 {
		return nil
	}
	if len(invs) == 1 {
		return []agenttypes.ToolResult{o.ExecuteTool(sess, invs[0])}
	}
	if !o.batchMutates(invs) {
		results := make([]agenttypes.ToolResult, len(invs))
		for i, inv := range invs {
			results[i] = o.ExecuteTool(sess, inv)
		}
		return results
	}
	return o.executeGrouped(sess, invs)
}

// resolve looks the invocation's tool up and enforces the confirmation gate.
// Returns ok=false with a ready error result when the invocation must not
// execute.
func (o *Orchestrator) resolve(inv agenttypes.ToolInvocation) (agenttypes.Tool, agenttypes.ToolResult, bool) {
	tool, exists := o.registry.Get(inv.Name)
	if !exists {
		return nil, agenttypes.ErrorResult("unknown tool: %s", inv.Name), false
	}
	if tool.RequiresConfirmation() && !o.approvals.Consume(inv.ID) {
		o.log.Warn("refusing unapproved tool", "tool", inv.Name, "invocation", inv.ID)
		return nil, agenttypes.ErrorResult(
			"tool %s requires user confirmation and none was given; intended effect: %s",
			inv.Name, tool.DryRun(inv.Arguments)), false
	}
	return tool, agenttypes.ToolResult{}, true
}

// executeScoped runs one mutating tool inside its own transaction scope.
func (o *Orchestrator) executeScoped(sess agenttypes.Session, tool agenttypes.Tool, args map[string]any) agenttypes.ToolResult {
	scope, err := o.txns.StartTransaction(sess.ActiveDocument(), "Agent: "+tool.Name())
	if err != nil {
		return agenttypes.ErrorResult("failed to start transaction for %s: %v", tool.Name(), err)
	}
	defer scope.Close()

	result := safeExecute(tool, sess, args)
	if !result.Success {
		// Close rolls the scope back.
		return result
	}
	if err := scope.Commit(); err != nil {
		return agenttypes.ErrorResult("failed to commit %s: %v", tool.Name(), err)
	}
	return result
}

// executeGrouped runs a mutating batch inside one transaction group. The
// group is resolved exactly once on every path; EnsureClosed backstops panics.
func (o *Orchestrator) executeGrouped(sess agenttypes.Session, invs []agenttypes.ToolInvocation) []agenttypes.ToolResult {
	doc := sess.ActiveDocument()
	results := make([]agenttypes.ToolResult, len(invs))

	if err := o.txns.StartGroup(doc, "Agent Actions"); err != nil {
		for i := range invs {
			results[i] = agenttypes.ErrorResult("failed to start transaction group: %v", err)
		}
		return results
	}
	defer o.txns.EnsureClosed()

	failedAt := -1
	for i, inv := range invs {
		if failedAt >= 0 {
			results[i] = agenttypes.ErrorResult("skipped: tool %s failed earlier in the batch and the batch was rolled back", invs[failedAt].Name)
			continue
		}

		tool, result, ok := o.resolve(inv)
		if !ok {
			results[i] = result
			failedAt = i
			continue
		}

		logger.ToolExecution(inv.Name, inv.Arguments)
		if !tool.RequiresTransaction() {
			results[i] = safeExecute(tool, sess, inv.Arguments)
		} else {
			results[i] = o.executeScoped(sess, tool, inv.Arguments)
		}
		if !results[i].Success {
			failedAt = i
		}
	}

	if failedAt >= 0 {
		if err := o.txns.RollbackGroup(); err != nil {
			o.log.Error("batch rollback failed", "error", err)
		}
		for i := range results {
			if results[i].Success {
				results[i] = agenttypes.ErrorResult("rolled back: tool %s failed later in the batch", invs[failedAt].Name)
			}
		}
		return results
	}

	if err := o.txns.CommitGroup(); err != nil {
		o.log.Error("batch commit failed", "error", err)
		for i := range results {
			results[i] = agenttypes.ErrorResult("failed to commit transaction group: %v", err)
		}
		return results
	}

	var affected []agenttypes.ElementID
	for _, result := range results {
		affected = append(affected, result.AffectedElements...)
	}
	o.selectAffected(sess, affected)
	return results
}

// batchMutates reports whether any registered tool in the batch requires a
// transaction. Unknown names resolve to error results later and do not force
// a group open.
func (o *Orchestrator) batchMutates(invs []agenttypes.ToolInvocation) bool {
	for _, inv := range invs {
		if tool, ok := o.registry.Get(inv.Name); ok && tool.RequiresTransaction() {
			return true
		}
	}
	return false
}

// selectAffected highlights the affected elements in the UI. Best effort:
// a selection failure is logged and never fails the tool call.
func (o *Orchestrator) selectAffected(sess agenttypes.Session, affected []agenttypes.ElementID) {
	if len(affected) == 0 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.log.Warn("selection feedback panicked", "panic", r)
		}
	}()
	if err := sess.Selection().Set(affected); err != nil {
		o.log.Warn("selection feedback failed", "error", err, "count", len(affected))
	}
}

// safeExecute invokes the tool body, converting panics into failed results so
// one bad tool call cannot crash the main thread or the turn.
func safeExecute(tool agenttypes.Tool, sess agenttypes.Session, args map[string]any) (result agenttypes.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			result = agenttypes.ErrorResult("tool %s panicked: %v", tool.Name(), r)
		}
	}()
	if args == nil {
		args = map[string]any{}
	}
	result = tool.Execute(sess, args)
	if result.Success && result.Error != "" {
		// Success and error text are mutually exclusive by contract.
		result = agenttypes.ErrorResult("tool %s returned an inconsistent result: %s", tool.Name(), result.Error)
	}
	return result
}

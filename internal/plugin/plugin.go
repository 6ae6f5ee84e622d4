// Package plugin wires the archagent core together for one plugin lifetime:
// the command queue and bridge, the transaction group manager, the tool
// registry and orchestrator, and the LLM client factory. Everything is
// explicitly constructed so tests can build fresh instances per case.
package plugin

import (
	"fmt"

	"archagent/internal/bridge"
	"archagent/internal/llm"
	"archagent/internal/logger"
	"archagent/internal/tools"
	"archagent/internal/tools/builtin"
	"archagent/internal/txn"
	"archagent/internal/version"
	"archagent/pkg/agenttypes"
)

// Plugin holds the core services for one plugin lifetime.
type Plugin struct {
	Bridge       *bridge.Bridge
	Transactions *txn.GroupManager
	Registry     *tools.Registry
	Approvals    *tools.ApprovalStore
	Orchestrator *tools.Orchestrator
	Clients      *llm.ClientFactory
}

// New constructs the core services and registers the builtin tool pack.
func New() *Plugin {
	registry := tools.NewRegistry()
	for _, tool := range builtin.Pack() {
		registry.MustRegister(tool)
	}

	transactions := txn.NewGroupManager()
	approvals := tools.NewApprovalStore()

	return &Plugin{
		Bridge:       bridge.New(),
		Transactions: transactions,
		Registry:     registry,
		Approvals:    approvals,
		Orchestrator: tools.NewOrchestrator(registry, transactions, approvals),
		Clients:      llm.NewClientFactory(),
	}
}

// Startup checks host compatibility and initializes the bridge with the
// host's signal primitive. Must complete before any RunOnMainThread.
func (p *Plugin) Startup(hostVersion string, event agenttypes.ExternalEvent) error {
	if err := version.CheckHostCompatibility(hostVersion); err != nil {
		return fmt.Errorf("plugin startup: %w", err)
	}
	if err := p.Bridge.Initialize(event); err != nil {
		return fmt.Errorf("plugin startup: %w", err)
	}
	logger.Info("archagent started", "host", hostVersion, "tools", len(p.Registry.GetAll()))
	return nil
}

// Drain is the handler registered with the host's external event; it runs on
// the main thread and executes pending commands.
func (p *Plugin) Drain(sess agenttypes.Session) {
	p.Bridge.Drain(sess)
}

// Shutdown cancels all pending commands so no awaiter hangs, and force-closes
// any transaction group left open. Safe to call more than once.
func (p *Plugin) Shutdown() {
	p.Bridge.Shutdown()
	p.Transactions.EnsureClosed()
	logger.Info("archagent stopped")
}

// Package main provides the archagent CLI: an LLM-driven agent for querying
// and mutating a building model through typed tools. The CLI runs against the
// in-memory host; a production deployment embeds the same plugin core inside
// the CAD host process.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"archagent/internal/config"
	"archagent/internal/host/memhost"
	"archagent/internal/llm"
	"archagent/internal/logger"
	"archagent/internal/plugin"
	"archagent/internal/render"
	"archagent/internal/version"
	"archagent/pkg/agenttypes"
)

// demoHostVersion is what the in-memory host reports; real hosts report their
// own API version.
const demoHostVersion = "2.4.0"

const defaultSystemPrompt = `You are an assistant operating on a building model through typed tools.
Query before you mutate, batch related mutations into one turn so they undo
as one step, and report element ids in your answers.`

var (
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "archagent",
	Short: "archagent - LLM agent for building models",
	Long: `archagent drives a building-information model through a fixed set of typed
tools, executed on the host's single main thread inside revertible transactions.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return logger.Configure(logLevel, logFile)
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive agent session",
	Long:  `Start an interactive session against an in-memory model document.`,
	RunE:  runChat,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List registered tools",
	Run: func(_ *cobra.Command, _ []string) {
		p := plugin.New()
		for _, tool := range p.Registry.GetAll() {
			flags := ""
			if tool.RequiresTransaction() {
				flags += " [txn]"
			}
			if tool.RequiresConfirmation() {
				flags += " [confirm]"
			}
			fmt.Printf("%-18s%s  %s\n", tool.Name(), flags, tool.Description())
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.Get().String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log to file instead of stderr")
	rootCmd.AddCommand(chatCmd, toolsCmd, versionCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	apiKey, err := cfg.APIKey()
	if err != nil {
		return err
	}

	doc, err := loadDocument(cfg)
	if err != nil {
		return err
	}
	sess := memhost.NewSession(doc, demoHostVersion)

	pump := memhost.NewPump(sess)
	p := plugin.New()
	event := pump.NewEvent(p.Drain)
	if err := p.Startup(demoHostVersion, event); err != nil {
		return err
	}
	pump.Start()
	defer func() {
		p.Shutdown()
		pump.Stop()
	}()

	client, err := p.Clients.GetClientForProvider(cfg.Provider, apiKey)
	if err != nil {
		return err
	}
	markdown, err := render.NewMarkdownRenderer()
	if err != nil {
		return err
	}

	stdin := bufio.NewScanner(os.Stdin)
	runner := llm.NewTurnRunner(client, cfg.Model, p.Registry, p.Orchestrator,
		p.Bridge, p.Approvals, stdinApprover(stdin, cfg.AutoApprove))

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	messages := []agenttypes.Message{{Role: agenttypes.RoleSystem, Content: systemPrompt}}

	fmt.Printf("archagent chat (%s/%s) on %q - empty line to exit\n", cfg.Provider, cfg.Model, doc.Title())
	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return stdin.Err()
		}
		input := strings.TrimSpace(stdin.Text())
		if input == "" {
			return nil
		}

		updated, reply, err := runner.RunTurn(context.Background(), messages, input)
		messages = updated
		if err != nil {
			logger.Error("turn failed", "error", err)
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		rendered, err := markdown.Render(reply)
		if err != nil {
			rendered = reply
		}
		fmt.Print(rendered)
	}
}

// loadDocument builds the demo document from the configured seed file, or a
// small default model when none is configured.
func loadDocument(cfg *config.Config) (*memhost.Document, error) {
	if cfg.ModelSeed != "" {
		return memhost.LoadModel(cfg.ModelSeed)
	}
	doc := memhost.NewDocument("Sample Project")
	doc.Seed(agenttypes.Element{Category: "Wall", Name: "Generic - 200mm", Parameters: map[string]string{"height_mm": "3000"}})
	doc.Seed(agenttypes.Element{Category: "Door", Name: "Single-Flush", Parameters: map[string]string{"width_mm": "915"}})
	doc.Seed(agenttypes.Element{Category: "Level", Name: "Level 1", Parameters: map[string]string{"elevation_mm": "0"}})
	return doc, nil
}

// stdinApprover prompts on the terminal for confirmation-gated tools.
func stdinApprover(stdin *bufio.Scanner, autoApprove bool) llm.Approver {
	return func(inv agenttypes.ToolInvocation, dryRun string) bool {
		if autoApprove {
			logger.Warn("auto-approving tool", "tool", inv.Name)
			return true
		}
		fmt.Printf("tool %s wants to: %s\napprove? [y/N] ", inv.Name, dryRun)
		if !stdin.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(stdin.Text()))
		return answer == "y" || answer == "yes"
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

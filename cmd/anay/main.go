package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VanshArora01/anay/internal/config"
	"github.com/VanshArora01/anay/internal/gateway"
)

// Assistant is the slice of the core the CLI needs (allows mocking in tests).
type Assistant interface {
	Handle(ctx context.Context, session, text string) string
	Close() error
}

// AssistantFactory creates an Assistant instance.
type AssistantFactory func(cfg *config.Config) (Assistant, error)

func defaultAssistantFactory(cfg *config.Config) (Assistant, error) {
	return gateway.NewCore(cfg)
}

// AgentOptions for running the agent with custom dependencies.
type AgentOptions struct {
	Factory AssistantFactory
	Stdin   io.Reader
	Stdout  io.Writer
}

var rootCmd = &cobra.Command{
	Use:   "anay",
	Short: "anay - natural language desktop assistant",
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the assistant in single message or REPL mode",
	RunE:  runAgent,
}

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the full gateway (channels + scheduler)",
	RunE:  runGateway,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and workspace",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show anay status",
	RunE:  runStatus,
}

var messageFlag string

func init() {
	agentCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	rootCmd.AddCommand(agentCmd, gatewayCmd, onboardCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAgent(cmd *cobra.Command, args []string) error {
	return runAgentWithOptions(AgentOptions{})
}

// runAgentWithOptions runs the agent with injectable dependencies for testing.
func runAgentWithOptions(opts AgentOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	factory := opts.Factory
	if factory == nil {
		factory = defaultAssistantFactory
	}

	assistant, err := factory(cfg)
	if err != nil {
		return err
	}
	defer assistant.Close()

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	ctx := context.Background()

	// Single message mode
	if messageFlag != "" {
		reply := assistant.Handle(ctx, "cli", messageFlag)
		if reply != "" {
			fmt.Fprintln(stdout, reply)
		}
		return nil
	}

	// REPL mode
	fmt.Fprintln(stdout, "anay (type 'exit' to quit)")
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		reply := assistant.Handle(ctx, "cli-repl", input)
		if reply != "" {
			fmt.Fprintln(stdout, reply)
		}
	}
	return nil
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return gw.Run(ctx)
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(filepath.Join(cfgDir, "data"), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	cfg, _ := config.LoadConfig()
	macrosDir := cfg.MacrosDir()
	if err := os.MkdirAll(filepath.Join(macrosDir, "focus-mode"), 0755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	writeIfNotExists(filepath.Join(macrosDir, "focus-mode", "MACRO.md"), defaultMacroMD)

	fmt.Printf("Workspace ready: %s\n", cfg.Assistant.Workspace)
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set your API key\n", cfgPath)
	fmt.Println("  2. Or set ANAY_API_KEY / GEMINI_API_KEY environment variable")
	fmt.Println("  3. Run 'anay agent -m \"open chrome\"' to test")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Workspace: %s\n", cfg.Assistant.Workspace)
	fmt.Printf("Model: %s\n", cfg.Assistant.Model)
	fmt.Printf("Provider: %s\n", providerDisplay(cfg.Provider.Type))
	if cfg.Provider.APIKey != "" && len(cfg.Provider.APIKey) > 8 {
		masked := cfg.Provider.APIKey[:4] + "..." + cfg.Provider.APIKey[len(cfg.Provider.APIKey)-4:]
		fmt.Printf("API Key: %s\n", masked)
	} else if cfg.Provider.APIKey != "" {
		fmt.Println("API Key: set")
	} else {
		fmt.Println("API Key: not set")
	}
	fmt.Printf("Telegram: enabled=%v\n", cfg.Channels.Telegram.Enabled)
	fmt.Printf("WebUI: enabled=%v\n", cfg.Channels.WebUI.Enabled)
	fmt.Printf("Macros: enabled=%v dir=%s\n", cfg.Macros.Enabled, cfg.MacrosDir())
	fmt.Printf("Memory DB: %s\n", cfg.MemoryDBPath())
	fmt.Printf("Execution context: %s\n", cfg.ContextPath())

	return nil
}

func providerDisplay(t string) string {
	if t == "" {
		return "gemini (default)"
	}
	return t
}

func writeIfNotExists(path, content string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = os.WriteFile(path, []byte(content), 0644)
		fmt.Printf("  Created: %s\n", path)
	}
}

const defaultMacroMD = `---
name: focus-mode
description: Close distractions and open the editor
keywords: [focus, work, deep work]
---

When the user asks for focus mode:
1. Close chrome and spotify.
2. Launch vscode.
3. Report what was closed and opened.
`

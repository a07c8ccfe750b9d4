package commands

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-tavern/chat/internal/client"
	"github.com/zhouzirui/z-tavern/chat/internal/tui"
)

const logFileName = "chat.log"

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen chat client",
		Long: `Open the full-screen client with the conversation list on the left.

Keyboard controls:
  • enter     send the message, or open the highlighted chat
  • ctrl+n    start a new chat
  • tab       switch between the list and the input
  • esc       quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	askClient, err := client.NewAskClient(cfg.Server, cfg.AskTimeout)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	// the alternate screen owns stdout, so logs go to a file
	logFile, err := tea.LogToFile(filepath.Join(cfg.DataDir, logFileName), "chat")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	ctx := cmd.Context()
	svc, closeStore, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	program := tui.NewChatProgram(ctx, svc, askClient)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}
	return nil
}

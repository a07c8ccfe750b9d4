package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-tavern/chat/internal/cli/ui"
	"github.com/zhouzirui/z-tavern/chat/internal/render"
)

const (
	listTitleWidth = 40
	showWidth      = 80
)

func newSessionsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "List, show, rename or delete saved conversations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsList(cmd, root)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsShow(cmd, root, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsRename(cmd, root, args[0], strings.Join(args[1:], " "))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsDelete(cmd, root, args[0])
		},
	})

	return cmd
}

func runSessionsList(cmd *cobra.Command, root *rootOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, closeStore, err := openSessions(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	sessions := svc.List()
	if len(sessions) == 0 {
		ui.PrintInfo(out, "no saved conversations")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers("ID", "TITLE", "MESSAGES", "UPDATED")...)

	for _, s := range sessions {
		t.Row(
			s.ID,
			runewidth.Truncate(s.Title, listTitleWidth, "…"),
			strconv.Itoa(len(s.Messages)),
			formatTime(s.UpdatedAt),
		)
	}

	fmt.Fprintln(out, t.Render())
	return nil
}

func runSessionsShow(cmd *cobra.Command, root *rootOptions, ref string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, closeStore, err := openSessions(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	session, err := resolveSession(svc, ref)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Styles.Bold.Render(session.Title))
	fmt.Fprintln(out)
	fmt.Fprintln(out, render.NewTerminalRenderer(showWidth).Messages(session.Messages))
	return nil
}

func runSessionsRename(cmd *cobra.Command, root *rootOptions, ref, title string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, closeStore, err := openSessions(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	session, err := resolveSession(svc, ref)
	if err != nil {
		return err
	}
	if err := svc.Rename(cmd.Context(), session.ID, title); err != nil {
		return err
	}

	ui.PrintSuccess(cmd.OutOrStdout(), "renamed %s to %q", session.ID, strings.TrimSpace(title))
	return nil
}

func runSessionsDelete(cmd *cobra.Command, root *rootOptions, ref string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, closeStore, err := openSessions(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	session, err := resolveSession(svc, ref)
	if err != nil {
		return err
	}
	if err := svc.Delete(cmd.Context(), session.ID); err != nil {
		return err
	}

	ui.PrintSuccess(cmd.OutOrStdout(), "deleted %s (%s)", session.ID, session.Title)
	return nil
}

func headers(names ...string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = ui.Styles.Header.Render(name)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

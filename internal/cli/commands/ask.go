package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-tavern/chat/internal/cli/ui"
	"github.com/zhouzirui/z-tavern/chat/internal/client"
	"github.com/zhouzirui/z-tavern/chat/internal/render"
)

const defaultAnswerWidth = 80

type askOptions struct {
	width int
	style string
	plain bool
}

func newAskCmd(root *rootOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask single questions without saving a conversation",
		Long: `Send a question to the server's /ask endpoint and print the answer as
highlighted markdown. Each question is sent on its own, without history.

With no argument an interactive prompt starts; type bye to leave it.`,
		Example: `  $ chat ask "what is a goroutine?"
  $ chat ask --style dark
  $ echo "explain defer" | chat ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, root, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "w", defaultAnswerWidth, "wrap answers at this width")
	cmd.Flags().StringVar(&opts.style, "style", "", "glamour style (dark, light, notty...); auto-detected when empty")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print answers as raw markdown (env CHAT_HIGHLIGHT=false)")

	return cmd
}

// answerPrinter formats answers for the prompt.
type answerPrinter func(answer string) string

func runAsk(cmd *cobra.Command, root *rootOptions, opts *askOptions, args []string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	askClient, err := client.NewAskClient(cfg.Server, cfg.AskTimeout)
	if err != nil {
		return err
	}

	printer := answerPrinter(func(answer string) string { return answer + "\n" })
	if cfg.Highlight && !opts.plain {
		md, err := render.NewMarkdownRenderer(opts.width, opts.style)
		if err != nil {
			return fmt.Errorf("create markdown renderer: %w", err)
		}
		printer = md.Render
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question must not be empty")
		}
		fmt.Fprint(out, printer(askClient.AskQuestion(cmd.Context(), question)))
		return nil
	}

	ui.PrintPromptBanner(out, askClient.Server())
	return askLoop(cmd, askClient, printer, cmd.InOrStdin(), out)
}

// askLoop reads one question per line until EOF or "bye".
func askLoop(cmd *cobra.Command, askClient *client.AskClient, printer answerPrinter, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		ui.PrintDim(out, "› ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "bye", "exit", "quit":
			ui.PrintInfo(out, "bye")
			return nil
		}

		ui.PrintDim(out, "Thinking...\n")
		fmt.Fprint(out, printer(askClient.AskQuestion(cmd.Context(), question)))
	}
}

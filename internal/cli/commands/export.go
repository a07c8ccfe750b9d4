package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-tavern/chat/internal/cli/ui"
	"github.com/zhouzirui/z-tavern/chat/internal/render"
)

type exportOptions struct {
	output string
	style  string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a conversation as a standalone HTML page",
		Example: `  $ chat export 0192ab -o chat.html
  $ chat export 0192ab --style github > chat.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&opts.style, "style", render.DefaultStyle, "code highlighting style")

	return cmd
}

func runExport(cmd *cobra.Command, root *rootOptions, opts *exportOptions, ref string) error {
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

	page := func(w io.Writer) error {
		if err := render.NewHTMLRenderer(opts.style).Page(w, session.Title, session.Messages); err != nil {
			return fmt.Errorf("render %s: %w", session.ID, err)
		}
		return nil
	}

	if opts.output == "" {
		return page(cmd.OutOrStdout())
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.output, err)
	}
	if err := writeAndClose(f, page); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	ui.PrintSuccess(cmd.ErrOrStderr(), "exported %s to %s", session.ID, opts.output)
	return nil
}

// writeAndClose runs write against wc and always closes it. A failed close
// is reported, since buffered data may not have reached the file.
func writeAndClose(wc io.WriteCloser, write func(io.Writer) error) error {
	if err := write(wc); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

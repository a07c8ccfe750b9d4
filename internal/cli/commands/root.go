package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-tavern/chat/internal/cli/ui"
	"github.com/zhouzirui/z-tavern/chat/internal/config"
	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
	chatservice "github.com/zhouzirui/z-tavern/chat/internal/service/chat"
	"github.com/zhouzirui/z-tavern/chat/internal/storage"
)

const version = "0.1.0"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	server  string
	dataDir string
	store   string
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the full-screen client.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "chat",
		Short:   "Terminal chat client for an ask server",
		Version: version,
		Long: `A chat client that forwards your messages to an ask server and renders
the markdown answers in the terminal.

Conversations started in the full-screen client are saved locally; the
ask command sends single questions and keeps nothing.`,
		Example: `  # Open the full-screen client
  $ chat

  # Ask a single question
  $ chat ask "how do I reverse a slice in Go?"

  # Interactive question prompt
  $ chat ask

  # Manage saved conversations
  $ chat sessions list
  $ chat export 0192 -o chat.html`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.server, "server", "s", "", "ask server URL (env CHAT_SERVER)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory for saved conversations and logs (env CHAT_DATA_DIR)")
	flags.StringVar(&opts.store, "store", "", "conversation store: file, bolt or memory (env CHAT_STORE_DRIVER)")

	rootCmd.AddCommand(newTUICmd(opts))
	rootCmd.AddCommand(newAskCmd(opts))
	rootCmd.AddCommand(newSessionsCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))

	rootCmd.SetVersionTemplate(fmt.Sprintf("chat version %s\n", version))
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())

	return rootCmd
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig reads the environment and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.ClientConfig, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if o.server != "" {
		cfg.Server = o.server
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.store != "" {
		cfg.StoreDriver = strings.ToLower(o.store)
	}
	return cfg, nil
}

// openSessions opens the configured store and loads the saved
// conversations. The returned close func releases the store.
func openSessions(ctx context.Context, cfg *config.ClientConfig) (*chatservice.Service, func(), error) {
	store, err := storage.Open(cfg.StoreDriver, cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	svc, err := chatservice.NewService(ctx, store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return svc, func() { _ = store.Close() }, nil
}

// resolveSession finds a session by id or by a unique id prefix.
func resolveSession(svc *chatservice.Service, ref string) (chat.Session, error) {
	if s, err := svc.Get(ref); err == nil {
		return s, nil
	}

	var matches []chat.Session
	for _, s := range svc.List() {
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s)
		}
	}

	switch len(matches) {
	case 0:
		return chat.Session{}, fmt.Errorf("%w: %s", chatservice.ErrSessionNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return chat.Session{}, fmt.Errorf("session prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + ui.Styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

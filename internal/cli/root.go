package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/checklist/internal/config"
	"github.com/idilsaglam/checklist/internal/logging"
	"github.com/idilsaglam/checklist/internal/ui"
)

// RootOptions holds global flags and the state resolved from them before
// any subcommand runs.
type RootOptions struct {
	ConfigPath string
	DataDir    string
	Backend    string
	Theme      string
	LogLevel   string

	cfg    config.Config
	logger *log.Logger
}

// NewRootCommand creates the root command. Without a subcommand it opens
// the interactive screen.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "A tiny checklist with local storage",
		Long: `checklist keeps a list of named items you can check off.
Items are shown oldest first and saved to a local database.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd.ErrOrStderr())
		},
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (default $CHECKLIST_CONFIG or <config dir>/checklist/config.toml)")
	pf.StringVar(&opts.DataDir, "data-dir", "", "directory holding the checklist store")
	pf.StringVar(&opts.Backend, "backend", "", "storage backend (sqlite|json)")
	pf.StringVar(&opts.Theme, "theme", "", "output theme (classic|neon|mono)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewUICommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewToggleCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// resolve loads config, applies flag overrides and sets up theme + logger.
func (o *RootOptions) resolve(logOut io.Writer) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return failure("config", err)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if o.Theme != "" {
		cfg.Theme = o.Theme
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return usageError("invalid configuration: %v", err)
	}

	ui.SetTheme(cfg.Theme)
	o.cfg = cfg
	o.logger = logging.FromConfig(logOut, cfg.LogLevel, cfg.LogFormat)
	return nil
}

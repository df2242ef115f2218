package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/checklist/internal/logging"
	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store"
	"github.com/idilsaglam/checklist/internal/store/jsonstore"
	"github.com/idilsaglam/checklist/internal/tui"
	"github.com/idilsaglam/checklist/internal/ui"
)

// NewUICommand opens the interactive screen.
func NewUICommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive checklist",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd, opts)
		},
	}
}

func runUI(cmd *cobra.Command, opts *RootOptions) error {
	ctx := cmd.Context()

	// the alt screen owns the terminal, so logs go to a file
	if err := os.MkdirAll(opts.cfg.DataDir, 0o755); err != nil {
		return failure("create data dir", err)
	}
	logFile, err := os.OpenFile(filepath.Join(opts.cfg.DataDir, "checklist.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return failure("open log file", err)
	}
	defer logFile.Close()
	logger := logging.FromConfig(logFile, opts.cfg.LogLevel, "logfmt")

	s, err := openStore(ctx, opts.cfg, logger)
	if err != nil {
		return failure("open store", err)
	}
	defer s.Close()

	err = tui.Run(ctx, s, tui.Options{
		Autosave: time.Duration(opts.cfg.AutosaveSeconds) * time.Second,
		Logger:   logger,
	})
	if err != nil {
		return failure("ui", err)
	}
	return nil
}

// NewAddCommand creates `add <name...>`.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name...>",
		Short: "Add a new item (name can be multiple words)",
		Example: `  checklist add "Buy milk"
  checklist add Buy bread`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			err := opts.withStore(cmd.Context(), func(s *store.Store) error {
				s.Create(name)
				return nil
			})
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "added")
			return nil
		},
	}
}

// NewListCommand creates `ls`.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items, oldest first",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return failure("open store", err)
			}
			defer s.Close()
			ui.Panel(cmd.OutOrStdout(), ui.ListLines(s.Items(), group))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

// NewToggleCommand creates `toggle <n>`.
func NewToggleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <n>",
		Aliases: []string{"done"},
		Short:   "Check or uncheck the item at 1-based position n",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			var (
				found bool
				now   model.Item
			)
			err = opts.withStore(cmd.Context(), func(s *store.Store) error {
				it, ok := s.At(pos)
				if !ok {
					return nil
				}
				found = s.ToggleChecked(it.ID)
				now, _ = s.Get(it.ID)
				return nil
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !found {
				ui.Note(out, fmt.Sprintf("nothing at position %s", args[0]))
				return nil
			}
			if now.IsChecked {
				ui.OK(out, "checked "+now.Name)
			} else {
				ui.OK(out, "unchecked "+now.Name)
			}
			return nil
		},
	}
}

// NewRenameCommand creates `rename <n> <name...>`.
func NewRenameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rename <n> <name...>",
		Aliases: []string{"edit"},
		Short:   "Rename the item at 1-based position n",
		Args:    usageArgs(cobra.MinimumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			name := strings.TrimSpace(strings.Join(args[1:], " "))
			var found bool
			err = opts.withStore(cmd.Context(), func(s *store.Store) error {
				if it, ok := s.At(pos); ok {
					found = s.Rename(it.ID, name)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if !found {
				ui.Note(cmd.OutOrStdout(), fmt.Sprintf("nothing at position %s", args[0]))
				return nil
			}
			ui.OK(cmd.OutOrStdout(), "renamed")
			return nil
		},
	}
}

// NewRemoveCommand creates `rm <n>`.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <n>",
		Aliases: []string{"delete"},
		Short:   "Remove the item at 1-based position n",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			var removed bool
			err = opts.withStore(cmd.Context(), func(s *store.Store) error {
				removed = s.Delete(pos)
				return nil
			})
			if err != nil {
				return err
			}
			if !removed {
				ui.Note(cmd.OutOrStdout(), fmt.Sprintf("nothing at position %s", args[0]))
				return nil
			}
			ui.OK(cmd.OutOrStdout(), "removed")
			return nil
		},
	}
}

// NewExportCommand creates `export`.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all items to stdout as JSON or YAML",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return usageError("export: unknown format %q (json|yaml)", format)
			}
			s, err := openStore(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return failure("open store", err)
			}
			defer s.Close()

			items := s.Items()
			out := cmd.OutOrStdout()
			if format == "json" {
				return jsonstore.Encode(out, items)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(items); err != nil {
				return failure("yaml encode", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json|yaml)")
	return cmd
}

// parsePosition turns a 1-based CLI position into a 0-based store position.
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, usageError("not a number: %s", arg)
	}
	return n - 1, nil
}

package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/tabletpos/internal/config"
	"github.com/roach88/tabletpos/internal/position"
	"github.com/roach88/tabletpos/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config is the effective configuration, loaded before any subcommand runs.
	Config config.Config

	viper *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tabletpos CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{viper: config.New()}

	cmd := &cobra.Command{
		Use:   "tabletpos",
		Short: "tabletpos - positions for transliterated tablets",
		Long: `tabletpos keeps the derived position fields of transliterated clay tablets
consistent with their row order: object and character offsets, line numbers
and discourse ordinals.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.loadConfig(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: $HOME/.tabletpos/config.yaml)")
	cmd.PersistentFlags().String("db", "", "path to SQLite database (default from config: tabletpos.db)")

	// Bind flags to viper
	_ = opts.viper.BindPFlag("database", cmd.PersistentFlags().Lookup("db"))

	// Add subcommands
	cmd.AddCommand(NewRecomputeCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// loadConfig merges defaults, the config file, TABLETPOS_* variables and
// bound flags, then installs the default slog logger on stderr.
func (o *RootOptions) loadConfig(cmd *cobra.Command) error {
	if o.viper == nil {
		o.viper = config.New()
	}
	if f := cmd.Flags().Lookup("dry-run"); f != nil {
		_ = o.viper.BindPFlag("recompute.dry_run", f)
	}

	cfg, err := config.Load(o.viper, o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Verbose {
		cfg.Log.Level = "debug"
	}
	o.Config = cfg

	slog.SetDefault(cfg.NewLogger(cmd.ErrOrStderr()))
	if used := o.viper.ConfigFileUsed(); used != "" {
		slog.Debug("using config file", "path", used)
	}
	return nil
}

// openStore opens the configured database.
func (o *RootOptions) openStore() (*store.Store, error) {
	path := o.Config.Database
	if path == "" {
		path = config.Default().Database
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	slog.Debug("opened database", "path", path)
	return st, nil
}

// newRecomputer builds a recomputer logging through the default logger.
func (o *RootOptions) newRecomputer(dryRun bool) *position.Recomputer {
	return position.New(position.Options{DryRun: dryRun, Logger: slog.Default()})
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

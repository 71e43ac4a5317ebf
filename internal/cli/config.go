package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tabletpos/internal/config"
)

// NewConfigCommand creates the config command and its show and init
// subcommands.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tabletpos configuration",
		Long: `Manage tabletpos configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (TABLETPOS_*)
3. Config file (~/.tabletpos/config.yaml)
4. Defaults`,
	}

	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigInitCommand(rootOpts))

	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show current configuration",
		Long:          `Display the effective configuration after merging defaults, the config file, environment variables and flags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			if formatter.JSON() {
				return formatter.Success(rootOpts.Config)
			}

			used := ""
			if rootOpts.viper != nil {
				used = rootOpts.viper.ConfigFileUsed()
			}
			if used != "" {
				fmt.Fprintf(formatter.GetErrWriter(), "Configuration file: %s\n\n", used)
			} else {
				fmt.Fprintf(formatter.GetErrWriter(), "No configuration file found (using defaults)\n\n")
			}

			data, err := yaml.Marshal(rootOpts.Config)
			if err != nil {
				return fmt.Errorf("error marshaling config: %w", err)
			}
			_, err = formatter.Writer.Write(data)
			return err
		},
	}
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Initialize default configuration file",
		Long:          `Create a default configuration file, by default at ~/.tabletpos/config.yaml.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to locate config", err)
				}
				path = p
			}

			if err := config.WriteDefault(path); err != nil {
				return WrapExitError(ExitCommandError, "failed to write config", err)
			}

			formatter := newFormatter(rootOpts, cmd)
			if formatter.JSON() {
				return formatter.Success(map[string]string{"path": path})
			}
			fmt.Fprintf(formatter.Writer, "✓ Created default configuration: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "file to create (default: $HOME/.tabletpos/config.yaml)")

	return cmd
}

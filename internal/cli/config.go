package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/Davincible/rsecc/pkg/config"
	"github.com/Davincible/rsecc/pkg/reedsolomon"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCommand creates the config command and its subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage settings and codec profiles",
		Long: `Show or reset the configuration file and manage named codec profiles.

The configuration is read from --config, $RSECC_CONFIG, or
$XDG_CONFIG_HOME/rsecc/config.json. Files ending in .yaml or .yml are read
and written as YAML.`,
	}

	cmd.AddCommand(
		newConfigShowCommand(),
		newConfigInitCommand(),
		newProfileCommand(),
	)

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if jsonOutput(cmd) {
				return outputJSONResult(cmd.OutOrStdout(), cm.GetConfig())
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %s\n", cm.Path())
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cm.GetConfig())
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				if !force {
					return fmt.Errorf("failed to load config: %w (use --force to overwrite)", err)
				}
				path, _ := cmd.Flags().GetString("config")
				if path == "" {
					return err
				}
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("failed to remove config: %w", err)
				}
				if cm, err = loadConfig(cmd); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}

			if force {
				cm.SetConfig(config.DefaultConfig())
				if err := cm.SaveConfig(); err != nil {
					return fmt.Errorf("failed to save config: %w", err)
				}
			}

			setupColor(cm, cmd.OutOrStdout())
			newPalette().green.Fprintf(cmd.OutOrStdout(), "✓ Configuration at %s\n", cm.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reset an existing configuration to defaults")

	return cmd
}

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage named codec profiles",
	}

	cmd.AddCommand(
		newProfileAddCommand(),
		newProfileListCommand(),
		newProfileDeleteCommand(),
	)

	return cmd
}

func newProfileAddCommand() *cobra.Command {
	var (
		codec       reedsolomon.Config
		description string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save codec parameters under a name",
		Example: `  rsecc config profile add archive --symbols 32 --workers 4 --tags cold,tape
  rsecc encode --profile archive -o backup.rs backup.tar`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("profile name cannot be empty")
			}

			profile := &config.Profile{
				Name:        name,
				Description: description,
				Codec:       codec,
				Tags:        tags,
			}
			if err := cm.AddProfile(profile); err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return outputJSONResult(cmd.OutOrStdout(), profile)
			}
			setupColor(cm, cmd.OutOrStdout())
			newPalette().green.Fprintf(cmd.OutOrStdout(), "✓ Profile '%s' saved (%d symbols)\n", name, codec.Symbols)
			return nil
		},
	}

	cmd.Flags().IntVarP(&codec.Symbols, "symbols", "s", 10, "ECC bytes per 255-byte block")
	cmd.Flags().IntVarP(&codec.Workers, "workers", "w", 0, "Blocks processed in parallel")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Profile description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma separated tags")

	return cmd
}

func newProfileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			profiles := cm.ListProfiles()
			if jsonOutput(cmd) {
				return outputJSONResult(cmd.OutOrStdout(), profiles)
			}

			w := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(w, "No profiles saved")
				return nil
			}

			setupColor(cm, w)
			p := newPalette()
			for _, profile := range profiles {
				p.cyan.Fprintf(w, "%s", profile.Name)
				fmt.Fprintf(w, "  symbols=%d workers=%d", profile.Codec.Symbols, profile.Codec.Workers)
				if len(profile.Tags) > 0 {
					fmt.Fprintf(w, " tags=%s", strings.Join(profile.Tags, ","))
				}
				fmt.Fprintln(w)
				if profile.Description != "" {
					fmt.Fprintf(w, "  %s\n", profile.Description)
				}
			}
			return nil
		},
	}
}

func newProfileDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cm.DeleteProfile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' deleted\n", args[0])
			return nil
		},
	}
}

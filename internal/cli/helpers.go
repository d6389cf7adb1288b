package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Davincible/rsecc/internal/validation"
	"github.com/Davincible/rsecc/pkg/config"
	"github.com/Davincible/rsecc/pkg/reedsolomon"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// codecFlags are shared by every command that runs the codec.
type codecFlags struct {
	codec   reedsolomon.Config
	profile string
}

func (f *codecFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.codec.Symbols, "symbols", "s", 10, "ECC bytes per 255-byte block")
	fs.IntVarP(&f.codec.Workers, "workers", "w", 0, "Blocks processed in parallel (0 or 1 is sequential)")
	fs.StringVar(&f.profile, "profile", "", "Use symbols and workers from a saved profile")
}

// resolve applies config defaults and the selected profile to every codec
// flag the user did not set explicitly. Precedence: flag, profile, config.
func (f *codecFlags) resolve(cmd *cobra.Command, cm *config.ConfigManager) (reedsolomon.Config, error) {
	flags := cmd.Flags()
	codec := f.codec
	cm.ApplyDefaults(&codec, flags)

	if f.profile != "" {
		p, err := cm.GetProfile(f.profile)
		if err != nil {
			return codec, err
		}
		if !flags.Changed("symbols") {
			codec.Symbols = p.Codec.Symbols
		}
		if !flags.Changed("workers") {
			codec.Workers = p.Codec.Workers
		}
	}

	if err := validation.ValidateSymbols(codec.Symbols); err != nil {
		return codec, err
	}
	if err := cm.ValidateConfig(&codec); err != nil {
		return codec, err
	}
	return codec, nil
}

// loadConfig opens the config named by --config, or the default one.
func loadConfig(cmd *cobra.Command) (*config.ConfigManager, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.NewConfigManagerAt(path)
	}
	return config.NewConfigManager()
}

// readInput reads the payload from a file argument, --text, or stdin.
func readInput(cmd *cobra.Command, args []string, text string) ([]byte, error) {
	if text != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("cannot use --text together with an input file")
		}
		return []byte(text), nil
	}

	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return data, nil
}

// pickFormat returns the flag value when set, the configured default
// otherwise.
func pickFormat(cmd *cobra.Command, flag, value, fallback string) (string, error) {
	if !cmd.Flags().Changed(flag) && fallback != "" {
		value = fallback
	}
	if err := validation.ValidateFormat(value); err != nil {
		return "", err
	}
	return value, nil
}

func jsonOutput(cmd *cobra.Command) bool {
	outputJSON, _ := cmd.Flags().GetBool("json")
	return outputJSON
}

func outputJSONResult(w io.Writer, result any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// setupColor turns colored output off when the config disables it or the
// writer is not a terminal.
func setupColor(cm *config.ConfigManager, w io.Writer) {
	color.NoColor = !cm.GetConfig().UI.UseColor || !isTerminal(w)
}

type palette struct {
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
}

func newPalette() palette {
	return palette{
		green:  color.New(color.FgGreen, color.Bold),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed, color.Bold),
		cyan:   color.New(color.FgCyan, color.Bold),
	}
}

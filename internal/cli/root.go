package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the rsecc command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rsecc",
		Short: "Reed-Solomon error correction for files and streams",
		Long: `rsecc protects data with Reed-Solomon forward error correction over GF(2^8).

Every 255-byte block carries a number of ECC bytes ("symbols"). A block with
nsym symbols can repair nsym corrupt bytes at known positions (erasures) or
nsym/2 corrupt bytes at unknown positions, or any mix where
2*errors + erasures <= nsym.

The encoded output has no header: the number of symbols used for encoding
must be passed again when decoding. Use --manifest to write the parameters
and a payload digest to a sidecar file.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			outputJSON, _ := cmd.Flags().GetBool("json")
			slog.SetDefault(newLogger(os.Stderr, verbose, outputJSON))
		},
	}

	rootCmd.AddCommand(
		NewEncodeCommand(),
		NewDecodeCommand(),
		NewCheckCommand(),
		NewConfigCommand(),
	)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/rsecc/config.json)")

	return rootCmd
}

// newLogger returns a slog logger writing logfmt-style text, or JSON when
// the rest of the output is JSON too.
func newLogger(w io.Writer, verbose, outputJSON bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	if outputJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		}))
	}

	charmLevel := log.WarnLevel
	if verbose {
		charmLevel = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          "rsecc",
		ReportTimestamp: verbose,
		Level:           charmLevel,
	})
	return slog.New(handler)
}

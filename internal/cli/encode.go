package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Davincible/rsecc/internal/validation"
	"github.com/Davincible/rsecc/pkg/config"
	"github.com/Davincible/rsecc/pkg/reedsolomon"
	"github.com/Davincible/rsecc/pkg/storage"
	"github.com/spf13/cobra"
)

// EncodeResult is the JSON summary of an encode run.
type EncodeResult struct {
	Symbols     int    `json:"symbols"`
	InputBytes  int    `json:"input_bytes"`
	OutputBytes int    `json:"output_bytes"`
	Blocks      int    `json:"blocks"`
	Output      string `json:"output,omitempty"`
	Manifest    string `json:"manifest,omitempty"`
	Format      string `json:"format"`
	Correctable int    `json:"correctable_errors_per_block"`
	MaxErasures int    `json:"correctable_erasures_per_block"`
}

// NewEncodeCommand creates the encode command
func NewEncodeCommand() *cobra.Command {
	var (
		flags        codecFlags
		text         string
		inputFormat  string
		outputFormat string
		outputFile   string
		manifest     bool
	)

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Add Reed-Solomon ECC bytes to a payload",
		Long: `Encode a payload by splitting it into blocks of 255-symbols bytes and
appending the ECC bytes to each block.

The payload is read from the file argument, from --text, or from stdin.`,
		Example: `  # Protect a file with 32 ECC bytes per block
  rsecc encode --symbols 32 -o backup.rs backup.tar

  # Encode text and print the result as hex
  rsecc encode --text "hello world" --symbols 9 --format hex

  # Also write backup.rs.rsecc.json with the parameters and a digest
  rsecc encode -s 16 -o backup.rs --manifest backup.tar`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			defaults := cm.GetConfig().Defaults

			codecCfg, err := flags.resolve(cmd, cm)
			if err != nil {
				return err
			}
			inFmt, err := pickFormat(cmd, "input-format", inputFormat, defaults.InputFormat)
			if err != nil {
				return err
			}
			outFmt, err := pickFormat(cmd, "format", outputFormat, defaults.OutputFormat)
			if err != nil {
				return err
			}

			input, err := readInput(cmd, args, text)
			if err != nil {
				return err
			}
			payload, err := validation.ParseFormat(input, inFmt)
			if err != nil {
				return fmt.Errorf("failed to parse input: %w", err)
			}

			codec, err := reedsolomon.NewCodec(codecCfg)
			if err != nil {
				return err
			}
			encoded, err := codec.Encode(payload)
			if err != nil {
				return fmt.Errorf("failed to encode payload: %w", err)
			}

			slog.Debug("Encoded payload",
				"input_bytes", len(payload),
				"output_bytes", len(encoded),
				"symbols", codecCfg.Symbols)

			out, err := validation.FormatOutput(encoded, outFmt)
			if err != nil {
				return err
			}

			result := EncodeResult{
				Symbols:     codecCfg.Symbols,
				InputBytes:  len(payload),
				OutputBytes: len(encoded),
				Blocks:      (len(encoded) + reedsolomon.BlockSize - 1) / reedsolomon.BlockSize,
				Format:      outFmt,
				Correctable: codecCfg.Symbols / 2,
				MaxErasures: codecCfg.Symbols,
			}

			outputFile = outputPath(cm, outputFile)
			if outputFile == "" {
				if manifest {
					return fmt.Errorf("--manifest requires --output")
				}
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}

			perm, err := cm.FileMode()
			if err != nil {
				return err
			}
			store := storage.NewFileStore(perm)
			if err := store.Save(outputFile, out); err != nil {
				return fmt.Errorf("failed to save output: %w", err)
			}
			result.Output = outputFile

			if manifest || cm.GetConfig().Storage.WriteManifest {
				if err := store.SaveManifest(outputFile, storage.NewManifest(payload, codecCfg.Symbols)); err != nil {
					return fmt.Errorf("failed to save manifest: %w", err)
				}
				result.Manifest = storage.ManifestPath(outputFile)
			}

			if jsonOutput(cmd) {
				return outputJSONResult(cmd.OutOrStdout(), result)
			}
			setupColor(cm, cmd.OutOrStdout())
			return outputEncodeText(cmd.OutOrStdout(), result)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&text, "text", "t", "", "Encode this text instead of reading input")
	cmd.Flags().StringVar(&inputFormat, "input-format", "raw", "Input encoding: raw, hex, base64")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "raw", "Output encoding: raw, hex, base64")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the encoded data to a file")
	cmd.Flags().BoolVar(&manifest, "manifest", false, "Write a manifest next to the output file")

	return cmd
}

func outputEncodeText(w io.Writer, result EncodeResult) error {
	p := newPalette()

	fmt.Fprintln(w)
	p.green.Fprintln(w, "✓ Payload encoded")
	fmt.Fprintf(w, "  Input:    %d bytes\n", result.InputBytes)
	fmt.Fprintf(w, "  Output:   %d bytes in %d block(s) (%s)\n", result.OutputBytes, result.Blocks, result.Format)
	fmt.Fprintf(w, "  Symbols:  %d per block\n", result.Symbols)
	fmt.Fprintf(w, "  Repairs:  up to %d erasures or %d errors per block\n", result.MaxErasures, result.Correctable)
	if result.Output != "" {
		p.cyan.Fprintf(w, "  Saved to %s\n", result.Output)
	}
	if result.Manifest != "" {
		p.cyan.Fprintf(w, "  Manifest %s\n", result.Manifest)
	} else {
		p.yellow.Fprintf(w, "\n⚠ Keep note of --symbols %d, it is needed to decode.\n", result.Symbols)
	}
	return nil
}

// outputPath places relative output paths under the configured default
// directory.
func outputPath(cm *config.ConfigManager, path string) string {
	dir := cm.GetConfig().Storage.DefaultPath
	if path == "" || dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Davincible/rsecc/internal/validation"
	"github.com/Davincible/rsecc/pkg/reedsolomon"
	"github.com/Davincible/rsecc/pkg/storage"
	"github.com/spf13/cobra"
)

// NewDecodeCommand creates the decode command
func NewDecodeCommand() *cobra.Command {
	var (
		flags        codecFlags
		text         string
		erasures     string
		inputFormat  string
		outputFormat string
		outputFile   string
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Repair and strip Reed-Solomon ECC bytes",
		Long: `Decode data produced by 'rsecc encode'. Each 255-byte block is checked,
repaired if needed, and its ECC bytes are removed.

The number of symbols must match the value used for encoding. When a
manifest is given (or found next to the input file) the symbols are read
from it and the decoded payload is checked against its digest.

Erasures are byte positions in the encoded data known to be corrupt, for
example "3,17,40-44".`,
		Example: `  # Decode a file
  rsecc decode --symbols 32 -o backup.tar backup.rs

  # Decode using the manifest written at encode time
  rsecc decode -o backup.tar backup.rs

  # Mark known bad bytes as erasures
  rsecc decode -s 16 -e 100-115 -o backup.tar backup.rs`,
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
			// Encoded data was written in the configured output format.
			inFmt, err := pickFormat(cmd, "input-format", inputFormat, defaults.OutputFormat)
			if err != nil {
				return err
			}
			outFmt, err := pickFormat(cmd, "format", outputFormat, defaults.InputFormat)
			if err != nil {
				return err
			}
			positions, err := validation.ParseErasures(erasures)
			if err != nil {
				return err
			}

			perm, err := cm.FileMode()
			if err != nil {
				return err
			}
			store := storage.NewFileStore(perm)

			manifest, err := findManifest(store, args, manifestPath)
			if err != nil {
				return err
			}
			if manifest != nil && !cmd.Flags().Changed("symbols") {
				codecCfg.Symbols = manifest.Symbols
			}

			input, err := readInput(cmd, args, text)
			if err != nil {
				return err
			}
			encoded, err := validation.ParseFormat(input, inFmt)
			if err != nil {
				return fmt.Errorf("failed to parse input: %w", err)
			}

			codec, err := reedsolomon.NewCodec(codecCfg)
			if err != nil {
				return err
			}
			codec = codec.WithLogger(slog.Default())

			payload, err := codec.Decode(encoded, positions...)
			if err != nil {
				return decodeError(err)
			}

			if manifest != nil {
				if err := manifest.Verify(payload); err != nil {
					return fmt.Errorf("decoded payload does not match manifest: %w", err)
				}
				slog.Debug("Payload verified against manifest", "digest", manifest.Digest)
			}

			out, err := validation.FormatOutput(payload, outFmt)
			if err != nil {
				return err
			}

			outputFile = outputPath(cm, outputFile)
			if outputFile == "" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := store.Save(outputFile, out); err != nil {
				return fmt.Errorf("failed to save output: %w", err)
			}

			if jsonOutput(cmd) {
				return outputJSONResult(cmd.OutOrStdout(), map[string]any{
					"symbols":       codecCfg.Symbols,
					"input_bytes":   len(encoded),
					"output_bytes":  len(payload),
					"output":        outputFile,
					"verified":      manifest != nil,
					"erasure_count": len(positions),
				})
			}

			setupColor(cm, cmd.OutOrStdout())
			p := newPalette()
			w := cmd.OutOrStdout()
			p.green.Fprintln(w, "✓ Payload decoded")
			fmt.Fprintf(w, "  %d bytes written to %s\n", len(payload), outputFile)
			if manifest != nil {
				p.cyan.Fprintln(w, "  Digest matches manifest")
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&text, "text", "t", "", "Decode this text instead of reading input")
	cmd.Flags().StringVarP(&erasures, "erasures", "e", "", "Known corrupt byte positions, e.g. 3,17,40-44")
	cmd.Flags().StringVar(&inputFormat, "input-format", "raw", "Input encoding: raw, hex, base64")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "raw", "Output encoding: raw, hex, base64")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the decoded payload to a file")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Manifest to read symbols and digest from")

	return cmd
}

// findManifest loads an explicit manifest, or the one next to the input
// file if it exists.
func findManifest(store *storage.FileStore, args []string, explicit string) (*storage.Manifest, error) {
	path := explicit
	if path == "" {
		if len(args) == 0 || args[0] == "-" {
			return nil, nil
		}
		path = storage.ManifestPath(args[0])
		if !store.Exists(path) {
			return nil, nil
		}
	}

	m, err := store.LoadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	slog.Debug("Using manifest", "path", path, "symbols", m.Symbols)
	return m, nil
}

// decodeError adds a hint for data errors, which usually mean the damage
// exceeds what the chosen symbols can repair or the symbols are wrong.
func decodeError(err error) error {
	var rsErr *reedsolomon.Error
	if errors.As(err, &rsErr) && rsErr.Kind == reedsolomon.KindData {
		return fmt.Errorf("failed to decode: %w (is --symbols the value used to encode?)", err)
	}
	return fmt.Errorf("failed to decode: %w", err)
}

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/Davincible/rsecc/internal/validation"
	"github.com/Davincible/rsecc/pkg/reedsolomon"
	"github.com/spf13/cobra"
)

// CheckResult is the JSON form of a check run.
type CheckResult struct {
	Symbols     int                       `json:"symbols"`
	Bytes       int                       `json:"bytes"`
	Blocks      int                       `json:"blocks"`
	Healthy     bool                      `json:"healthy"`
	Repairable  bool                      `json:"repairable"`
	Repairs     []reedsolomon.BlockReport `json:"repairs,omitempty"`
	FailedBlock *int                      `json:"failed_block,omitempty"`
	Error       string                    `json:"error,omitempty"`
}

// NewCheckCommand creates a command that reports damage without writing
// anything.
func NewCheckCommand() *cobra.Command {
	var (
		flags       codecFlags
		erasures    string
		inputFormat string
	)

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Report which blocks of encoded data are damaged",
		Long: `Runs the decoder over encoded data and reports, per 255-byte block,
which byte positions would be repaired. Nothing is written.

The command fails when a block cannot be repaired.`,
		Example: `  # Check a file encoded with 32 symbols
  rsecc check -s 32 backup.rs

  # Machine readable report
  rsecc check -s 32 --json backup.rs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			codecCfg, err := flags.resolve(cmd, cm)
			if err != nil {
				return err
			}
			inFmt, err := pickFormat(cmd, "input-format", inputFormat, cm.GetConfig().Defaults.OutputFormat)
			if err != nil {
				return err
			}
			positions, err := validation.ParseErasures(erasures)
			if err != nil {
				return err
			}

			input, err := readInput(cmd, args, "")
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
			_, reports, decodeErr := codec.DecodeWithReport(encoded, positions...)
			if decodeErr != nil && reedsolomon.IsContractViolation(decodeErr) {
				return decodeErr
			}

			result := CheckResult{
				Symbols:    codecCfg.Symbols,
				Bytes:      len(encoded),
				Blocks:     (len(encoded) + reedsolomon.BlockSize - 1) / reedsolomon.BlockSize,
				Healthy:    decodeErr == nil && len(reports) == 0,
				Repairable: decodeErr == nil,
				Repairs:    reports,
			}
			if decodeErr != nil {
				result.Error = decodeErr.Error()
				var rsErr *reedsolomon.Error
				if errors.As(decodeErr, &rsErr) {
					result.FailedBlock = &rsErr.Chunk
				}
			}

			if jsonOutput(cmd) {
				if err := outputJSONResult(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				setupColor(cm, cmd.OutOrStdout())
				outputCheckText(cmd.OutOrStdout(), result)
			}

			if decodeErr != nil {
				return fmt.Errorf("data is not repairable: %w", decodeErr)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&erasures, "erasures", "e", "", "Known corrupt byte positions, e.g. 3,17,40-44")
	cmd.Flags().StringVar(&inputFormat, "input-format", "raw", "Input encoding: raw, hex, base64")

	return cmd
}

func outputCheckText(w io.Writer, result CheckResult) {
	p := newPalette()

	fmt.Fprintf(w, "Checked %d bytes in %d block(s) with %d symbols\n\n",
		result.Bytes, result.Blocks, result.Symbols)

	switch {
	case result.Healthy:
		p.green.Fprintln(w, "✓ No damage found")
		return
	case !result.Repairable:
		if result.FailedBlock != nil {
			p.red.Fprintf(w, "❌ Block %d cannot be repaired\n", *result.FailedBlock)
		} else {
			p.red.Fprintln(w, "❌ Data cannot be repaired")
		}
		fmt.Fprintf(w, "  %s\n", result.Error)
		return
	}

	total := 0
	for _, r := range result.Repairs {
		total += r.Repaired()
		p.yellow.Fprintf(w, "  Block %d (offset %d): ", r.Index, r.Offset)
		fmt.Fprintf(w, "%d erasure(s), %d error(s)\n", len(r.Erasures), len(r.Errors))
		if len(r.Errors) > 0 {
			fmt.Fprintf(w, "    errors at %v\n", r.Errors)
		}
	}
	fmt.Fprintln(w)
	p.green.Fprintf(w, "✓ Repairable: %d byte(s) in %d block(s)\n", total, len(result.Repairs))
}

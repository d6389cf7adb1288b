package validation

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	hexPattern     = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	erasurePattern = regexp.MustCompile(`^\d+(-\d+)?$`)
)

// Formats accepted for payload input and output
var Formats = []string{"raw", "hex", "base64"}

// MaxErasureRange caps how many positions a single "a-b" range may expand to.
const MaxErasureRange = 1 << 20

func ValidateHex(input string) error {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return fmt.Errorf("hex string cannot be empty")
	}

	if len(input)%2 != 0 {
		return fmt.Errorf("hex string must have even length")
	}

	if !hexPattern.MatchString(input) {
		return fmt.Errorf("invalid hex characters")
	}

	return nil
}

func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return fmt.Errorf("unknown format '%s', expected one of %s", format, strings.Join(Formats, ", "))
	}
	return nil
}

func ValidateSymbols(nsym int) error {
	if nsym < 0 || nsym > 254 {
		return fmt.Errorf("symbols must be between 0 and 254 (got %d)", nsym)
	}
	return nil
}

// ParseFormat decodes input written in format.
func ParseFormat(input []byte, format string) ([]byte, error) {
	switch format {
	case "raw":
		return input, nil
	case "hex":
		text := SanitizeInput(string(input))
		text = strings.Join(strings.Fields(text), "")
		if err := ValidateHex(text); err != nil {
			return nil, err
		}
		return hex.DecodeString(text)
	case "base64":
		text := strings.Join(strings.Fields(string(input)), "")
		data, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
		return data, nil
	default:
		return nil, ValidateFormat(format)
	}
}

// FormatOutput encodes data in format. Text formats end with a newline.
func FormatOutput(data []byte, format string) ([]byte, error) {
	switch format {
	case "raw":
		return data, nil
	case "hex":
		return []byte(hex.EncodeToString(data) + "\n"), nil
	case "base64":
		return []byte(base64.StdEncoding.EncodeToString(data) + "\n"), nil
	default:
		return nil, ValidateFormat(format)
	}
}

// ParseErasures parses a comma separated list of positions and inclusive
// ranges, e.g. "3,17,40-44". The result is sorted without duplicates.
func ParseErasures(list string) ([]int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}

	var positions []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if !erasurePattern.MatchString(part) {
			return nil, fmt.Errorf("invalid erasure '%s', expected position or start-end", part)
		}

		bounds := strings.SplitN(part, "-", 2)
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("invalid erasure '%s': %w", part, err)
		}
		end := start
		if len(bounds) == 2 {
			end, err = strconv.Atoi(bounds[1])
			if err != nil {
				return nil, fmt.Errorf("invalid erasure '%s': %w", part, err)
			}
		}

		if end < start {
			return nil, fmt.Errorf("invalid erasure range '%s': end before start", part)
		}
		if end-start >= MaxErasureRange {
			return nil, fmt.Errorf("erasure range '%s' too large", part)
		}

		for p := start; p <= end; p++ {
			positions = append(positions, p)
		}
	}

	slices.Sort(positions)
	return slices.Compact(positions), nil
}

func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.Join(lines, "\n")
}

package reedsolomon

import (
	"errors"
	"fmt"
)

// Kind classifies a codec failure.
type Kind int

const (
	// KindContract marks caller misuse: oversized blocks, too many erasures,
	// invalid parameters. Retrying with the same input cannot succeed.
	KindContract Kind = iota + 1

	// KindData marks data that is too damaged to repair. These are expected
	// under real corruption and callers usually react by requesting the data
	// again.
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindContract:
		return "contract violation"
	case KindData:
		return "uncorrectable data"
	default:
		return "unknown"
	}
}

// Contract violations
var (
	ErrTooLong           = errors.New("block exceeds 255 bytes")
	ErrTooManyErasures   = errors.New("too many erasures to correct")
	ErrInvalidSymbols    = errors.New("number of ECC symbols out of range")
	ErrErasureOutOfRange = errors.New("erasure position outside block")
	ErrBlockTooShort     = errors.New("block shorter than ECC symbols")
)

// Data failures
var (
	ErrTooManyErrors         = errors.New("too many errors to correct")
	ErrCouldNotLocate        = errors.New("could not locate error")
	ErrCouldNotCorrect       = errors.New("could not correct message")
	ErrCouldNotFindMagnitude = errors.New("could not find error magnitude")
)

// Error is returned by every codec operation that fails.
type Error struct {
	Op    string // "encode" or "decode"
	Kind  Kind
	Chunk int // index of the failing chunk, -1 for single block calls
	Err   error
}

func (e *Error) Error() string {
	if e.Chunk >= 0 {
		return fmt.Sprintf("reedsolomon: %s chunk %d: %v", e.Op, e.Chunk, e.Err)
	}
	return fmt.Sprintf("reedsolomon: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func contractError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindContract, Chunk: -1, Err: err}
}

func dataError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindData, Chunk: -1, Err: err}
}

// inChunk returns err annotated with the chunk index it came from.
func inChunk(err error, chunk int) error {
	var rsErr *Error
	if errors.As(err, &rsErr) {
		annotated := *rsErr
		annotated.Chunk = chunk
		return &annotated
	}
	return err
}

// IsContractViolation reports whether err stems from invalid arguments.
func IsContractViolation(err error) bool {
	var rsErr *Error
	return errors.As(err, &rsErr) && rsErr.Kind == KindContract
}

// IsDataError reports whether err means the input was too damaged to repair.
func IsDataError(err error) bool {
	var rsErr *Error
	return errors.As(err, &rsErr) && rsErr.Kind == KindData
}

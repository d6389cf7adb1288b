// Package reedsolomon implements a systematic Reed-Solomon codec over
// GF(2^8) (primitive polynomial 0x11D, generator 2).
//
// A block holds at most 255 bytes: the message followed by nsym ECC bytes.
// Decoding corrects up to nsym erasures (positions known to be corrupt) or
// nsym/2 errors at unknown positions, and any mix with 2*errors+erasures <=
// nsym. Payloads longer than one block are split into consecutive chunks
// that are encoded independently and concatenated.
//
// The encoded form carries no header. Callers must agree on nsym and keep
// track of the payload length themselves.
package reedsolomon

import (
	"fmt"
	"log/slog"
)

// Config holds the parameters of a chunked codec.
type Config struct {
	// Symbols is the number of ECC bytes appended to every chunk.
	Symbols int `json:"symbols" yaml:"symbols"`

	// Workers bounds the number of chunks processed concurrently. Zero and
	// one process chunks sequentially.
	Workers int `json:"workers" yaml:"workers"`
}

func (c *Config) Validate() error {
	if c.Symbols < 0 || c.Symbols >= BlockSize {
		return contractError("config",
			fmt.Errorf("%w: must be between 0 and %d, got %d", ErrInvalidSymbols, BlockSize-1, c.Symbols))
	}
	if c.Workers < 0 {
		return contractError("config", fmt.Errorf("workers cannot be negative, got %d", c.Workers))
	}
	return nil
}

// Codec encodes and decodes payloads of arbitrary length. A Codec holds no
// mutable state and is safe for concurrent use.
type Codec struct {
	cfg    Config
	logger *slog.Logger
}

// NewCodec validates cfg and returns a codec for it.
func NewCodec(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg, logger: slog.Default()}, nil
}

// WithLogger returns a copy of the codec that reports repairs to logger.
func (c *Codec) WithLogger(logger *slog.Logger) *Codec {
	cp := *c
	cp.logger = logger
	return &cp
}

// Config returns the codec's parameters.
func (c *Codec) Config() Config {
	return c.cfg
}

// Encode splits payload into chunks of 255-nsym bytes, encodes each chunk
// and concatenates the results.
func (c *Codec) Encode(payload []byte) ([]byte, error) {
	nsym := c.cfg.Symbols
	chunks := split(payload, MaxMessageLen(nsym))

	err := c.each(chunks, func(_ int, ch *chunk) error {
		out, err := EncodeBlock(ch.data, nsym)
		ch.out = out
		return err
	})
	if err != nil {
		return nil, err
	}

	encoded := make([]byte, 0, EncodedLen(len(payload), nsym))
	for _, ch := range chunks {
		encoded = append(encoded, ch.out...)
	}
	return encoded, nil
}

// EncodeString encodes the UTF-8 bytes of text.
func (c *Codec) EncodeString(text string) ([]byte, error) {
	return c.Encode([]byte(text))
}

// Decode splits payload into 255-byte chunks, corrects each one and
// returns the concatenated messages. erasures are positions in payload.
func (c *Codec) Decode(payload []byte, erasures ...int) ([]byte, error) {
	decoded, _, err := c.DecodeWithReport(payload, erasures...)
	return decoded, err
}

// DecodeToString decodes payload and returns the message as a string.
func (c *Codec) DecodeToString(payload []byte, erasures ...int) (string, error) {
	decoded, err := c.Decode(payload, erasures...)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// Encode encodes payload with nsym ECC bytes per chunk.
func Encode(payload []byte, nsym int) ([]byte, error) {
	c, err := NewCodec(Config{Symbols: nsym})
	if err != nil {
		return nil, err
	}
	return c.Encode(payload)
}

// EncodeString encodes the UTF-8 bytes of text with nsym ECC bytes per chunk.
func EncodeString(text string, nsym int) ([]byte, error) {
	return Encode([]byte(text), nsym)
}

// Decode reverses Encode, correcting errors along the way.
func Decode(payload []byte, nsym int, erasures ...int) ([]byte, error) {
	c, err := NewCodec(Config{Symbols: nsym})
	if err != nil {
		return nil, err
	}
	return c.Decode(payload, erasures...)
}

// DecodeToString is Decode returning a string.
func DecodeToString(payload []byte, nsym int, erasures ...int) (string, error) {
	c, err := NewCodec(Config{Symbols: nsym})
	if err != nil {
		return "", err
	}
	return c.DecodeToString(payload, erasures...)
}

// MaxMessageLen is the number of payload bytes carried by one block.
func MaxMessageLen(nsym int) int {
	return BlockSize - nsym
}

// EncodedLen returns the encoded size of an n byte payload.
func EncodedLen(n, nsym int) int {
	size := MaxMessageLen(nsym)
	chunks := (n + size - 1) / size
	return n + nsym*chunks
}

// DecodedLen returns the payload size carried by an n byte encoded stream,
// or -1 if no payload encodes to exactly n bytes.
func DecodedLen(n, nsym int) int {
	chunks := (n + BlockSize - 1) / BlockSize
	if n%BlockSize != 0 && n%BlockSize <= nsym {
		return -1
	}
	return n - nsym*chunks
}

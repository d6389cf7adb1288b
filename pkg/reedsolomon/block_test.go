package reedsolomon

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var helloWorldBlock = []byte{
	104, 101, 108, 108, 111, 32, 119, 111, 114, 108, 100,
	145, 124, 96, 105, 94, 31, 179, 149, 163,
}

func TestEncodeBlock_HelloWorld(t *testing.T) {
	encoded, err := EncodeBlock([]byte("hello world"), 9)
	require.NoError(t, err)
	assert.Equal(t, helloWorldBlock, encoded)
}

func TestDecodeBlock_HelloWorldMixed(t *testing.T) {
	corrupted := bytes.Clone(helloWorldBlock)
	for i, v := range []byte{0, 1, 2, 3, 4} {
		corrupted[i] = v
	}
	corrupted[15] = 5

	decoded, err := DecodeBlock(corrupted, 9, 0, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(decoded))

	// Input must be left untouched
	assert.Equal(t, byte(1), corrupted[1])
}

func TestGeneratorPoly(t *testing.T) {
	assert.Equal(t, []byte{1}, GeneratorPoly(0))
	assert.Equal(t, []byte{1, 1}, GeneratorPoly(1))
	// (x + 1)(x + 2) = x^2 + 3x + 2
	assert.Equal(t, []byte{1, 3, 2}, GeneratorPoly(2))
	assert.Len(t, GeneratorPoly(32), 33)
}

func TestEncodeBlock_Validation(t *testing.T) {
	tests := []struct {
		name    string
		msgLen  int
		nsym    int
		wantErr error
	}{
		{"fits exactly", 246, 9, nil},
		{"one byte too long", 247, 9, ErrTooLong},
		{"no ECC", 255, 0, nil},
		{"negative symbols", 10, -1, ErrInvalidSymbols},
		{"all symbols", 0, 255, ErrInvalidSymbols},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeBlock(make([]byte, tt.msgLen), tt.nsym)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsContractViolation(err))
				assert.Nil(t, encoded)
				return
			}
			require.NoError(t, err)
			assert.Len(t, encoded, tt.msgLen+tt.nsym)
		})
	}
}

func TestDecodeBlock_Validation(t *testing.T) {
	block, err := EncodeBlock([]byte("abcdef"), 4)
	require.NoError(t, err)

	_, err = DecodeBlock(make([]byte, 256), 4)
	assert.ErrorIs(t, err, ErrTooLong)
	assert.True(t, IsContractViolation(err))

	_, err = DecodeBlock(block, 4, 0, 1, 2, 3, 4)
	assert.ErrorIs(t, err, ErrTooManyErasures)
	assert.True(t, IsContractViolation(err))
	assert.False(t, IsDataError(err))

	_, err = DecodeBlock(block, 4, len(block))
	assert.ErrorIs(t, err, ErrErasureOutOfRange)

	_, err = DecodeBlock(block, 4, -1)
	assert.ErrorIs(t, err, ErrErasureOutOfRange)

	_, err = DecodeBlock(block[:3], 4)
	assert.ErrorIs(t, err, ErrBlockTooShort)
}

func TestDecodeBlock_DuplicateErasures(t *testing.T) {
	block, err := EncodeBlock([]byte("duplicate"), 2)
	require.NoError(t, err)

	corrupted := bytes.Clone(block)
	corrupted[4] ^= 0xAA

	decoded, err := DecodeBlock(corrupted, 2, 4, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, "duplicate", string(decoded))
}

func TestDecodeBlock_NoCorruption(t *testing.T) {
	for _, nsym := range []int{0, 1, 8, 32} {
		msg := bytes.Repeat([]byte("x1"), 40)
		block, err := EncodeBlock(msg, nsym)
		require.NoError(t, err)

		ok, err := CheckBlock(block, nsym)
		require.NoError(t, err)
		assert.True(t, ok)

		codeword, errPos, err := CorrectBlock(block, nsym)
		require.NoError(t, err)
		assert.Equal(t, block, codeword)
		assert.Empty(t, errPos)
	}
}

func TestDecodeBlock_SingleSymbolBound(t *testing.T) {
	block, err := EncodeBlock([]byte("abc"), 1)
	require.NoError(t, err)

	// One unknown error needs two ECC bytes
	corrupted := bytes.Clone(block)
	corrupted[1] ^= 7
	_, err = DecodeBlock(corrupted, 1)
	require.ErrorIs(t, err, ErrTooManyErrors)
	assert.True(t, IsDataError(err))

	ok, err := CheckBlock(corrupted, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// The same corruption as an erasure costs only one
	decoded, err := DecodeBlock(corrupted, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(decoded))
}

func TestCorrectBlock_ReportsErrorPositions(t *testing.T) {
	block, err := EncodeBlock([]byte("position report"), 6)
	require.NoError(t, err)

	corrupted := bytes.Clone(block)
	corrupted[2] ^= 0x10
	corrupted[17] ^= 0x01
	corrupted[9] = 0

	codeword, errPos, err := CorrectBlock(corrupted, 6, 9)
	require.NoError(t, err)
	assert.Equal(t, block, codeword)
	assert.ElementsMatch(t, []int{2, 17}, errPos)
}

func TestBlockRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nsym := rapid.IntRange(0, 64).Draw(t, "nsym")
		msg := rapid.SliceOfN(rapid.Byte(), 0, BlockSize-nsym).Draw(t, "msg")

		block, err := EncodeBlock(msg, nsym)
		require.NoError(t, err)
		require.Len(t, block, len(msg)+nsym)
		assert.Equal(t, msg, block[:len(msg)])

		decoded, err := DecodeBlock(block, nsym)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	})
}

func TestBlockErasureCorrection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nsym := rapid.IntRange(1, 40).Draw(t, "nsym")
		msg := rapid.SliceOfN(rapid.Byte(), 1, BlockSize-nsym).Draw(t, "msg")
		block, err := EncodeBlock(msg, nsym)
		require.NoError(t, err)

		count := rapid.IntRange(0, nsym).Draw(t, "erasures")
		positions := rapid.Permutation(indices(len(block))).Draw(t, "positions")[:count]

		corrupted := bytes.Clone(block)
		for _, p := range positions {
			corrupted[p] = rapid.Byte().Draw(t, "value")
		}

		decoded, err := DecodeBlock(corrupted, nsym, positions...)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	})
}

func TestBlockErrorCorrection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nsym := rapid.IntRange(2, 40).Draw(t, "nsym")
		msg := rapid.SliceOfN(rapid.Byte(), 1, BlockSize-nsym).Draw(t, "msg")
		block, err := EncodeBlock(msg, nsym)
		require.NoError(t, err)

		count := rapid.IntRange(0, nsym/2).Draw(t, "errors")
		positions := rapid.Permutation(indices(len(block))).Draw(t, "positions")[:count]

		corrupted := bytes.Clone(block)
		for _, p := range positions {
			corrupted[p] ^= rapid.ByteRange(1, 255).Draw(t, "flip")
		}

		codeword, errPos, err := CorrectBlock(corrupted, nsym)
		require.NoError(t, err)
		assert.Equal(t, block, codeword)
		assert.ElementsMatch(t, positions, errPos)
	})
}

func TestBlockMixedCorrection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nsym := rapid.IntRange(1, 40).Draw(t, "nsym")
		msg := rapid.SliceOfN(rapid.Byte(), 1, BlockSize-nsym).Draw(t, "msg")
		block, err := EncodeBlock(msg, nsym)
		require.NoError(t, err)

		erasures := rapid.IntRange(0, nsym).Draw(t, "erasures")
		errCount := rapid.IntRange(0, (nsym-erasures)/2).Draw(t, "errors")
		positions := rapid.Permutation(indices(len(block))).Draw(t, "positions")

		corrupted := bytes.Clone(block)
		for _, p := range positions[:erasures] {
			corrupted[p] = rapid.Byte().Draw(t, "value")
		}
		for _, p := range positions[erasures : erasures+errCount] {
			corrupted[p] ^= rapid.ByteRange(1, 255).Draw(t, "flip")
		}

		decoded, err := DecodeBlock(corrupted, nsym, positions[:erasures]...)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	})
}

func indices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

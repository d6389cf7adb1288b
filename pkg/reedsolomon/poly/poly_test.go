package poly

import (
	"testing"

	"github.com/Davincible/rsecc/pkg/reedsolomon/gf256"
	"github.com/stretchr/testify/assert"
)

func TestAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want []byte
	}{
		{"same length", []byte{1, 2, 3}, []byte{1, 0, 1}, []byte{0, 2, 2}},
		{"shorter right", []byte{5, 1, 2}, []byte{3}, []byte{5, 1, 1}},
		{"shorter left", []byte{7}, []byte{4, 0, 7}, []byte{4, 0, 0}},
		{"empty", nil, []byte{9, 8}, []byte{9, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Add(tt.a, tt.b))
			assert.Equal(t, tt.want, Add(tt.b, tt.a))
		})
	}
}

func TestMul(t *testing.T) {
	// (x + 1)(x + 1) = x^2 + 1 in characteristic 2
	assert.Equal(t, []byte{1, 0, 1}, Mul([]byte{1, 1}, []byte{1, 1}))

	// (x + 1)(x + 2) = x^2 + 3x + 2
	assert.Equal(t, []byte{1, 3, 2}, Mul([]byte{1, 1}, []byte{1, 2}))

	a := []byte{3, 0, 7, 1}
	b := []byte{0, 5, 2}
	got := Mul(a, b)
	assert.Len(t, got, len(a)+len(b)-1)
	assert.Equal(t, got, Mul(b, a))

	for _, x := range []byte{0, 1, 2, 77, 200} {
		assert.Equal(t, gf256.Mul(Eval(a, x), Eval(b, x)), Eval(got, x))
	}

	assert.Nil(t, Mul(nil, b))
}

func TestScale(t *testing.T) {
	a := []byte{1, 2, 0, 255}
	assert.Equal(t, []byte{0, 0, 0, 0}, Scale(a, 0))
	assert.Equal(t, a, Scale(a, 1))

	for _, x := range []byte{3, 90} {
		s := Scale(a, x)
		assert.Equal(t, gf256.Mul(Eval(a, 6), x), Eval(s, 6))
	}
}

func TestEval(t *testing.T) {
	// 3x^2 + 5x + 7 at x = 2
	want := gf256.Mul(3, gf256.Mul(2, 2)) ^ gf256.Mul(5, 2) ^ 7
	assert.Equal(t, want, Eval([]byte{3, 5, 7}, 2))
	assert.Equal(t, byte(42), Eval([]byte{42}, 99))
	assert.Equal(t, byte(7), Eval([]byte{3, 5, 7}, 0))
}

func TestReverseAndTrim(t *testing.T) {
	assert.Equal(t, []byte{3, 2, 1}, Reverse([]byte{1, 2, 3}))
	assert.Equal(t, []byte{}, Reverse([]byte{}))

	assert.Equal(t, []byte{4, 0, 5}, TrimLeadingZeros([]byte{0, 0, 4, 0, 5}))
	assert.Empty(t, TrimLeadingZeros([]byte{0, 0}))

	assert.True(t, IsZero([]byte{0, 0, 0}))
	assert.True(t, IsZero(nil))
	assert.False(t, IsZero([]byte{0, 1}))
}

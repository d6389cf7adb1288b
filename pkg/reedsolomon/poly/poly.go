// Package poly implements polynomial arithmetic over GF(2^8).
//
// A polynomial is a byte slice of coefficients with the highest-degree term
// first, so len(p) is the degree plus one. Leading zero coefficients are kept
// as is; callers normalize with TrimLeadingZeros when the degree matters.
package poly

import "github.com/Davincible/rsecc/pkg/reedsolomon/gf256"

// Add returns a + b. The shorter operand is aligned on its lowest-degree term.
func Add(a, b []byte) []byte {
	r := make([]byte, max(len(a), len(b)))
	copy(r[len(r)-len(a):], a)
	off := len(r) - len(b)
	for i, c := range b {
		r[off+i] ^= c
	}
	return r
}

// Mul returns a * b, a polynomial of length len(a)+len(b)-1.
func Mul(a, b []byte) []byte {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	r := make([]byte, len(a)+len(b)-1)
	for j, bj := range b {
		if bj == 0 {
			continue
		}
		lb := gf256.Log(bj)
		for i, ai := range a {
			if ai == 0 {
				continue
			}
			r[i+j] ^= gf256.Exp(gf256.Log(ai) + lb)
		}
	}
	return r
}

// Scale multiplies every coefficient of a by x.
func Scale(a []byte, x byte) []byte {
	r := make([]byte, len(a))
	for i, c := range a {
		r[i] = gf256.Mul(c, x)
	}
	return r
}

// Eval evaluates a at x with Horner's method. a must not be empty.
func Eval(a []byte, x byte) byte {
	y := a[0]
	for _, c := range a[1:] {
		y = gf256.Mul(y, x) ^ c
	}
	return y
}

// Reverse returns a copy of a with the coefficient order reversed.
func Reverse(a []byte) []byte {
	r := make([]byte, len(a))
	for i, c := range a {
		r[len(a)-1-i] = c
	}
	return r
}

// TrimLeadingZeros drops zero coefficients from the high-degree end. The
// result shares storage with a.
func TrimLeadingZeros(a []byte) []byte {
	for len(a) > 0 && a[0] == 0 {
		a = a[1:]
	}
	return a
}

// IsZero reports whether every coefficient of a is zero.
func IsZero(a []byte) bool {
	for _, c := range a {
		if c != 0 {
			return false
		}
	}
	return true
}

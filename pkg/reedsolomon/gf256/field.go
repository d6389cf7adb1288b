// Package gf256 implements arithmetic in GF(2^8) using the primitive
// polynomial x^8 + x^4 + x^3 + x^2 + 1 (0x11D) with generator 2.
//
// The field definition is fixed. Codewords produced with a different
// polynomial or generator are not compatible with this package.
package gf256

import "errors"

const (
	// Primitive is the field's primitive polynomial: x^8 + x^4 + x^3 + x^2 + 1
	Primitive = 0x11D

	// Order is the number of nonzero field elements
	Order = 255
)

// ErrDivideByZero is the panic value raised by Div when the divisor is zero.
var ErrDivideByZero = errors.New("gf256: division by zero")

// expTable is twice the field order long so that log(a)+log(b) can index it
// directly without reduction.
var (
	expTable [2 * 256]byte
	logTable [256]byte
)

func init() {
	x := 1
	for i := 0; i < Order; i++ {
		expTable[i] = byte(x)
		logTable[x] = byte(i)

		x <<= 1
		if x&0x100 != 0 {
			x ^= Primitive
		}
	}
	for i := Order; i < len(expTable); i++ {
		expTable[i] = expTable[i-Order]
	}
}

// Add returns x + y, which in characteristic 2 is xor
func Add(x, y byte) byte {
	return x ^ y
}

// Sub returns x - y, identical to Add
func Sub(x, y byte) byte {
	return x ^ y
}

// Mul returns x * y
func Mul(x, y byte) byte {
	if x == 0 || y == 0 {
		return 0
	}
	return expTable[int(logTable[x])+int(logTable[y])]
}

// Div returns x / y. It panics with ErrDivideByZero when y is zero.
func Div(x, y byte) byte {
	if y == 0 {
		panic(ErrDivideByZero)
	}
	if x == 0 {
		return 0
	}
	return expTable[int(logTable[x])+Order-int(logTable[y])%Order]
}

// Pow returns x raised to n. Negative exponents are reduced into [0, 255).
// Pow(0, n) is not special-cased and yields 1.
func Pow(x byte, n int) byte {
	e := (int(logTable[x]) * n) % Order
	if e < 0 {
		e += Order
	}
	return expTable[e]
}

// Inverse returns the multiplicative inverse of x. x must be nonzero.
func Inverse(x byte) byte {
	return expTable[Order-int(logTable[x])]
}

// Exp returns the generator raised to i, for 0 <= i < 510.
func Exp(i int) byte {
	return expTable[i]
}

// Log returns the discrete logarithm of x. Log(0) is meaningless and
// returns 0.
func Log(x byte) int {
	return int(logTable[x])
}

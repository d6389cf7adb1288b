package reedsolomon

import (
	"fmt"
	"slices"

	"github.com/Davincible/rsecc/pkg/reedsolomon/gf256"
	"github.com/Davincible/rsecc/pkg/reedsolomon/poly"
)

// BlockSize is the largest codeword the field supports.
const BlockSize = gf256.Order

// GeneratorPoly returns g(x) = (x - 2^0)(x - 2^1)...(x - 2^(nsym-1)).
func GeneratorPoly(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		g = poly.Mul(g, []byte{1, gf256.Pow(2, i)})
	}
	return g
}

// EncodeBlock returns message followed by nsym ECC bytes.
func EncodeBlock(message []byte, nsym int) ([]byte, error) {
	if nsym < 0 || nsym >= BlockSize {
		return nil, contractError("encode", fmt.Errorf("%w: %d", ErrInvalidSymbols, nsym))
	}
	if len(message)+nsym > BlockSize {
		return nil, contractError("encode",
			fmt.Errorf("%w: %d message + %d ECC bytes", ErrTooLong, len(message), nsym))
	}

	gen := GeneratorPoly(nsym)

	// Synthetic division of message * x^nsym by the monic generator. The
	// remainder accumulates in out[len(message):].
	out := make([]byte, len(message)+nsym)
	copy(out, message)
	for i := range message {
		coef := out[i]
		if coef == 0 {
			continue
		}
		lc := gf256.Log(coef)
		for j := 1; j < len(gen); j++ {
			if gen[j] != 0 {
				out[i+j] ^= gf256.Exp(gf256.Log(gen[j]) + lc)
			}
		}
	}
	copy(out, message)

	return out, nil
}

// Syndromes returns the block evaluated at 2^0 .. 2^(nsym-1), preceded by a
// zero entry so that index i holds S_i.
func Syndromes(block []byte, nsym int) []byte {
	synd := make([]byte, nsym+1)
	if len(block) == 0 {
		return synd
	}
	for i := 0; i < nsym; i++ {
		synd[i+1] = poly.Eval(block, gf256.Pow(2, i))
	}
	return synd
}

// CheckBlock reports whether block is a consistent codeword.
func CheckBlock(block []byte, nsym int) (bool, error) {
	if err := validateBlock(block, nsym); err != nil {
		return false, err
	}
	return poly.IsZero(Syndromes(block, nsym)), nil
}

// DecodeBlock corrects block and returns its message part. erasures lists
// byte positions already known to be corrupt.
func DecodeBlock(block []byte, nsym int, erasures ...int) ([]byte, error) {
	corrected, _, err := CorrectBlock(block, nsym, erasures...)
	if err != nil {
		return nil, err
	}
	return corrected[:len(corrected)-nsym], nil
}

// CorrectBlock corrects block and returns the full codeword together with
// the unknown error positions that were located and repaired. block is not
// modified.
func CorrectBlock(block []byte, nsym int, erasures ...int) (codeword []byte, errPos []int, err error) {
	if err := validateBlock(block, nsym); err != nil {
		return nil, nil, err
	}

	erasures = normalizeErasures(erasures)
	for _, p := range erasures {
		if p < 0 || p >= len(block) {
			return nil, nil, contractError("decode",
				fmt.Errorf("%w: position %d, block length %d", ErrErasureOutOfRange, p, len(block)))
		}
	}
	if len(erasures) > nsym {
		return nil, nil, contractError("decode",
			fmt.Errorf("%w: %d erasures, %d ECC bytes", ErrTooManyErasures, len(erasures), nsym))
	}

	out := slices.Clone(block)
	for _, p := range erasures {
		out[p] = 0
	}

	synd := Syndromes(out, nsym)
	if poly.IsZero(synd) {
		return out, nil, nil
	}

	fsynd := forneySyndromes(synd, erasures, len(out))
	errLoc, err := findErrorLocator(fsynd, nsym, len(erasures))
	if err != nil {
		return nil, nil, err
	}

	errPos = findErrors(poly.Reverse(errLoc), len(out))
	if len(errPos) == 0 && len(erasures) == 0 {
		return nil, nil, dataError("decode", ErrCouldNotLocate)
	}

	errata := make([]int, 0, len(erasures)+len(errPos))
	errata = append(errata, erasures...)
	errata = append(errata, errPos...)
	if err := correctErrata(out, synd, errata); err != nil {
		return nil, nil, err
	}

	if !poly.IsZero(Syndromes(out, nsym)) {
		return nil, nil, dataError("decode", ErrCouldNotCorrect)
	}

	return out, errPos, nil
}

func validateBlock(block []byte, nsym int) error {
	if nsym < 0 || nsym >= BlockSize {
		return contractError("decode", fmt.Errorf("%w: %d", ErrInvalidSymbols, nsym))
	}
	if len(block) > BlockSize {
		return contractError("decode", fmt.Errorf("%w: %d bytes", ErrTooLong, len(block)))
	}
	if len(block) < nsym {
		return contractError("decode",
			fmt.Errorf("%w: %d bytes, %d ECC bytes", ErrBlockTooShort, len(block), nsym))
	}
	return nil
}

// normalizeErasures returns the erasure positions sorted with duplicates
// removed. A repeated position would otherwise be counted twice against the
// ECC budget and give the errata locator a double root.
func normalizeErasures(erasures []int) []int {
	if len(erasures) == 0 {
		return nil
	}
	out := slices.Clone(erasures)
	slices.Sort(out)
	return slices.Compact(out)
}

// forneySyndromes removes the contribution of the erased positions from the
// syndromes, leaving len(synd)-1-len(pos) usable entries that only depend on
// errors of unknown position.
func forneySyndromes(synd []byte, pos []int, n int) []byte {
	fsynd := slices.Clone(synd[1:])
	for _, p := range pos {
		x := gf256.Pow(2, n-1-p)
		for j := 0; j < len(fsynd)-1; j++ {
			fsynd[j] = gf256.Mul(fsynd[j], x) ^ fsynd[j+1]
		}
	}
	return fsynd
}

// findErrorLocator runs Berlekamp-Massey over the Forney syndromes and
// returns the error locator, highest degree first.
func findErrorLocator(synd []byte, nsym, eraseCount int) ([]byte, error) {
	errLoc := []byte{1}
	oldLoc := []byte{1}

	shift := 0
	if len(synd) > nsym {
		shift = len(synd) - nsym
	}

	for i := 0; i < nsym-eraseCount; i++ {
		k := i + shift
		delta := synd[k]
		for j := 1; j < len(errLoc); j++ {
			delta ^= gf256.Mul(errLoc[len(errLoc)-1-j], synd[k-j])
		}

		oldLoc = append(oldLoc, 0)

		if delta != 0 {
			if len(oldLoc) > len(errLoc) {
				newLoc := poly.Scale(oldLoc, delta)
				oldLoc = poly.Scale(errLoc, gf256.Inverse(delta))
				errLoc = newLoc
			}
			errLoc = poly.Add(errLoc, poly.Scale(oldLoc, delta))
		}
	}

	errLoc = poly.TrimLeadingZeros(errLoc)
	errs := len(errLoc) - 1
	if 2*errs-eraseCount > nsym {
		return nil, dataError("decode",
			fmt.Errorf("%w: %d errors, %d erasures, %d ECC bytes", ErrTooManyErrors, errs, eraseCount, nsym))
	}
	return errLoc, nil
}

// findErrors evaluates the reversed locator at every 2^i inside the block.
// A root at 2^i is an error at position n-1-i.
func findErrors(locator []byte, n int) []int {
	var pos []int
	for i := 0; i < n; i++ {
		if poly.Eval(locator, gf256.Pow(2, i)) == 0 {
			pos = append(pos, n-1-i)
		}
	}
	return pos
}

// errataLocator builds the product of (1 + 2^p x) over the coefficient
// positions p.
func errataLocator(coefPos []int) []byte {
	loc := []byte{1}
	for _, p := range coefPos {
		loc = poly.Mul(loc, poly.Add([]byte{1}, []byte{gf256.Pow(2, p), 0}))
	}
	return loc
}

// errorEvaluator returns synd * errLoc mod x^(n+1).
func errorEvaluator(synd, errLoc []byte, n int) []byte {
	product := poly.Mul(synd, errLoc)
	if keep := n + 1; keep < len(product) {
		return product[len(product)-keep:]
	}
	return product
}

// correctErrata computes the Forney magnitude for every errata position and
// xors it into msg in place.
func correctErrata(msg, synd []byte, errPos []int) error {
	coefPos := make([]int, len(errPos))
	for i, p := range errPos {
		coefPos[i] = len(msg) - 1 - p
	}

	errLoc := errataLocator(coefPos)
	errEval := errorEvaluator(poly.Reverse(synd), errLoc, len(errLoc)-1)

	x := make([]byte, len(coefPos))
	for i, p := range coefPos {
		x[i] = gf256.Pow(2, -(BlockSize - p))
	}

	magnitudes := make([]byte, len(x))
	for i, xi := range x {
		xiInv := gf256.Inverse(xi)

		// Formal derivative of the errata locator at xiInv
		denom := byte(1)
		for j, xj := range x {
			if j != i {
				denom = gf256.Mul(denom, 1^gf256.Mul(xiInv, xj))
			}
		}
		if denom == 0 {
			return dataError("decode", ErrCouldNotFindMagnitude)
		}

		y := gf256.Mul(xi, poly.Eval(errEval, xiInv))
		magnitudes[i] = gf256.Div(y, denom)
	}

	for i, p := range errPos {
		msg[p] ^= magnitudes[i]
	}
	return nil
}

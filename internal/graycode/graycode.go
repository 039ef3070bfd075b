// Package graycode builds the ordered Gray-code sequence the DPSK
// constellation uses for its symbol-to-phase mapping. Codes are produced in
// reflect-and-prefix bit-set form so the memory layout of each code is
// deterministic, which downstream table builders (phase-shift map, sector
// table) rely on — this is never derived from bitwise XOR for that reason.
package graycode

import (
	"fmt"

	"github.com/seredenko/dpsk-modem/internal/numerics"
)

// ErrInvalidNumCodes is returned when numCodes is not a positive power of
// two.
type ErrInvalidNumCodes struct {
	NumCodes int
}

func (e *ErrInvalidNumCodes) Error() string {
	return fmt.Sprintf("number of codes %d is not a positive power of two", e.NumCodes)
}

// Generate produces the ordered sequence G[0..numCodes) of Gray codes, each
// code itself an ordered bit slice (most-significant bit first).
func Generate(numCodes int) ([][]bool, error) {
	if !numerics.IsPowerOfTwo(numCodes) {
		return nil, &ErrInvalidNumCodes{NumCodes: numCodes}
	}
	if numCodes == 1 {
		return [][]bool{{false}}, nil
	}

	length := numerics.NumBits(numCodes)
	codes := make([][]bool, numCodes)
	for i := range codes {
		codes[i] = make([]bool, length)
	}

	for block := 1; block < numCodes; block *= 2 {
		posNewSeniorDigit := length - numerics.NumBits(block) - 1
		offsetBack := 1

		for codeID := block; codeID < block*2; codeID++ {
			codes[codeID][posNewSeniorDigit] = true
			for bitID := posNewSeniorDigit + 1; bitID < length; bitID++ {
				codes[codeID][bitID] = codes[codeID-offsetBack][bitID]
			}
			offsetBack += 2
		}
	}
	return codes, nil
}

// Decimal is Generate in decimal form: G[i] is the decimal value of the
// i-th Gray code on the constellation circle, traversed counter-clockwise
// starting at 0.
func Decimal(numCodes int) ([]uint32, error) {
	codes, err := Generate(numCodes)
	if err != nil {
		return nil, err
	}
	values := make([]uint32, len(codes))
	for i, code := range codes {
		values[i] = numerics.BinToDec(code)
	}
	return values, nil
}

// Rank returns the index of value within the decimal Gray sequence table —
// the inverse of Decimal. Returns -1 if value is not present.
func Rank(table []uint32, value uint32) int {
	for i, v := range table {
		if v == value {
			return i
		}
	}
	return -1
}

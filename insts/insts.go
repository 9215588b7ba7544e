// Package insts provides the instruction model consumed by the renamer and a
// tokenizer for textual instruction listings.
//
// This package turns lines such as "ADD R1, R2, #4" into structured
// instructions. It supports:
//   - Comment lines starting with '#' and blank lines (skipped)
//   - A leading '!' marker that asks the renamer to keep the destination binding
//   - Branch classification by opcode (any opcode starting with 'B')
//
// Usage:
//
//	parser := insts.NewParser()
//	inst, ok, err := parser.ParseLine("ADD R1, R1, R2")
//	fmt.Printf("Op: %s, Operands: %v\n", inst.Opcode, inst.Operands)
package insts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedOperand is returned when a register-shaped token does not carry
// a valid register index.
var ErrMalformedOperand = errors.New("malformed operand")

// Instruction represents one tokenized instruction line.
type Instruction struct {
	Text       string   // Original line, trimmed, including any '!' marker
	Opcode     string   // Operation mnemonic
	Operands   []string // Operand tokens in source order, trimmed
	IsBranch   bool     // true if the instruction reads registers but writes none
	SkipRename bool     // true if the destination keeps its current binding
}

// IsRegister reports whether token is register-shaped, i.e. starts with the
// architectural register prefix.
func IsRegister(prefix, token string) bool {
	return prefix != "" && strings.HasPrefix(token, prefix)
}

// ParseRegister parses a register token such as "R10" into its index.
func ParseRegister(prefix, token string) (int, error) {
	if !IsRegister(prefix, token) {
		return 0, fmt.Errorf("%w: %q is not a %s register", ErrMalformedOperand, token, prefix)
	}

	digits := token[len(prefix):]
	if digits == "" {
		return 0, fmt.Errorf("%w: %q has no register index", ErrMalformedOperand, token)
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q has an invalid register index", ErrMalformedOperand, token)
		}
	}

	idx, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedOperand, token, err)
	}
	return idx, nil
}

// FormatRegister renders a register index with the given prefix.
func FormatRegister(prefix string, idx int) string {
	return prefix + strconv.Itoa(idx)
}

package insts

import (
	"errors"
	"strings"
)

const (
	// CommentMarker starts a line that is ignored.
	CommentMarker = "#"
	// SkipRenameMarker prefixes an instruction whose destination must not be
	// renamed.
	SkipRenameMarker = "!"
)

// ErrEmptyInstruction is returned for a line holding only a skip marker.
var ErrEmptyInstruction = errors.New("empty instruction")

// Parser tokenizes instruction lines.
type Parser struct{}

// NewParser creates a new instruction line parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseLine tokenizes a single line. It returns ok=false for blank lines and
// comments.
func (p *Parser) ParseLine(line string) (*Instruction, bool, error) {
	text := strings.TrimSpace(line)
	if text == "" || strings.HasPrefix(text, CommentMarker) {
		return nil, false, nil
	}

	inst := &Instruction{Text: text}

	body := text
	if strings.HasPrefix(body, SkipRenameMarker) {
		inst.SkipRename = true
		body = strings.TrimSpace(body[len(SkipRenameMarker):])
		if body == "" {
			return nil, true, ErrEmptyInstruction
		}
	}

	opcode, rest := splitOpcode(body)
	inst.Opcode = opcode
	inst.IsBranch = isBranchOpcode(opcode)
	inst.Operands = splitOperands(rest)

	return inst, true, nil
}

// splitOpcode separates the first whitespace-delimited token from the rest.
func splitOpcode(body string) (string, string) {
	idx := strings.IndexAny(body, " \t")
	if idx < 0 {
		return body, ""
	}
	return body[:idx], strings.TrimSpace(body[idx+1:])
}

func splitOperands(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	operands := make([]string, 0, len(parts))
	for _, part := range parts {
		operands = append(operands, strings.TrimSpace(part))
	}
	return operands
}

// isBranchOpcode classifies B, BEQ, BNE, BL and friends as branch-like. The
// test is a plain prefix match, so BIC and BFI are branch-like too and their
// first operand is read, not renamed.
func isBranchOpcode(opcode string) bool {
	return strings.HasPrefix(strings.ToUpper(opcode), "B")
}

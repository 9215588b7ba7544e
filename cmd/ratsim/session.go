package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/xid"

	"github.com/sarchlab/ratsim/insts"
	"github.com/sarchlab/ratsim/log"
	"github.com/sarchlab/ratsim/timing/core"
	"github.com/sarchlab/ratsim/timing/rename"
	"github.com/sarchlab/ratsim/trace"
)

// freeDirective starts a line that retires physical registers.
const freeDirective = ".free"

// simulate renames every instruction read from in and writes the trace to
// out. Per-instruction faults are reported in the trace and do not stop the
// run.
func simulate(config *rename.Config, in io.Reader, out io.Writer, check bool) error {
	table, err := rename.NewTableWithConfig(config)
	if err != nil {
		return err
	}

	driver := core.NewDriver(table)

	printer := trace.NewPrinter(out, table)
	driver.AcceptHook(printer)
	table.AcceptHook(printer)

	logger := log.Rename.With().Str("session", xid.New().String()).Logger()
	logHook := trace.NewLogHook(logger)
	driver.AcceptHook(logHook)
	table.AcceptHook(logHook)

	printer.PrintHeader(table)

	parser := insts.NewParser()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if isFreeDirective(line) {
			if err := retire(table, line); err != nil {
				printer.PrintError(err)
				logger.Warn().Err(err).Msg("free directive failed")
			}
		} else {
			inst, ok, err := parser.ParseLine(line)
			switch {
			case err != nil:
				_ = driver.Abort(&insts.Instruction{Text: line}, err)
			case ok:
				_, _ = driver.Process(inst)
			}
		}

		if check {
			if err := table.CheckInvariants(); err != nil {
				return fmt.Errorf("register alias table corrupted after %q: %w", line, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read instructions: %w", err)
	}

	stats := driver.Stats()
	logger.WithLevel(levelFor(stats.Faults)).
		Uint64("instructions", stats.Instructions).
		Uint64("renames", stats.Renames).
		Uint64("skipped", stats.Skipped).
		Uint64("faults", stats.Faults).
		Int("free", table.NumFree()).
		Msg("renaming finished")

	return nil
}

func isFreeDirective(line string) bool {
	if !strings.HasPrefix(line, freeDirective) {
		return false
	}
	rest := line[len(freeDirective):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// retire frees every physical register named by a ".free" directive. It stops
// at the first failure; registers before it stay freed.
func retire(table *rename.Table, line string) error {
	operands := strings.TrimSpace(line[len(freeDirective):])
	if operands == "" {
		return fmt.Errorf("%s: no physical register given", line)
	}

	for _, op := range strings.Split(operands, ",") {
		phys, err := insts.ParseRegister(table.PhysPrefix(), strings.TrimSpace(op))
		if err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
		if err := table.FreePhysicalRegister(phys); err != nil {
			return fmt.Errorf("%s: %w", line, err)
		}
	}

	return nil
}

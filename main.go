// Package main provides the entry point for ratsim.
// ratsim models the register alias table of an out-of-order core.
//
// For the full CLI, use: go run ./cmd/ratsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("ratsim - Register Alias Table renaming simulator")
	fmt.Println("")
	fmt.Println("Usage: ratsim [options] <instruction-file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --config       Path to a JSON or YAML rename config file")
	fmt.Println("  --arch-regs    Number of architectural registers (default 8)")
	fmt.Println("  --phys-regs    Number of physical registers (default 16)")
	fmt.Println("  --init-map     Start with an identity mapping")
	fmt.Println("  --check        Verify table invariants after every instruction")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/ratsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/ratsim' instead.")
	}
}

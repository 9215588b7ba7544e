// Package main provides the entry point for ratsim.
// ratsim drives an instruction listing through a register alias table and
// prints the renaming trace.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sarchlab/ratsim/log"
	"github.com/sarchlab/ratsim/timing/rename"
)

var version = "0.1.0"

// options holds the command line flags of one invocation.
type options struct {
	configPath string
	dumpConfig string
	archRegs   int
	physRegs   int
	initMap    bool
	archPrefix string
	physPrefix string
	logLevel   string
	logJSON    bool
	check      bool
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ratsim: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ratsim [flags] <instruction-file>",
		Short: "ratsim renames an instruction listing through a register alias table",
		Long: `ratsim models the register renaming stage of an out-of-order core.
Each instruction's sources are looked up in the register alias table before
its destination is bound to a fresh physical register. Lines starting with
'#' are comments, a leading '!' keeps the destination binding, and
".free T3" returns a physical register to the free list.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogging(opts, errOut); err != nil {
				return err
			}

			config, err := buildConfig(cmd, opts)
			if err != nil {
				return err
			}

			if opts.dumpConfig != "" {
				if err := config.SaveConfig(opts.dumpConfig); err != nil {
					return err
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("instruction file not found at %s: %w", args[0], err)
			}
			defer f.Close()

			return simulate(config, f, out, opts.check)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	defaults := rename.DefaultConfig()
	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a JSON or YAML rename config file")
	flags.StringVar(&opts.dumpConfig, "dump-config", "", "Write the effective config to this path")
	flags.IntVar(&opts.archRegs, "arch-regs", defaults.ArchRegs, "Number of architectural registers")
	flags.IntVar(&opts.physRegs, "phys-regs", defaults.PhysRegs, "Number of physical registers")
	flags.BoolVar(&opts.initMap, "init-map", false, "Start with architectural register i mapped to physical register i")
	flags.StringVar(&opts.archPrefix, "arch-prefix", defaults.ArchPrefix, "Architectural register prefix")
	flags.StringVar(&opts.physPrefix, "phys-prefix", defaults.PhysPrefix, "Physical register prefix")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.BoolVar(&opts.logJSON, "log-json", false, "Emit JSON logs instead of console logs")
	flags.BoolVar(&opts.check, "check", false, "Verify table invariants after every instruction")

	return rootCmd
}

func initLogging(opts *options, errOut io.Writer) error {
	level, err := log.ParseLogLevel(strings.ToLower(opts.logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)
	}

	logType := log.ConsoleLogger
	if opts.logJSON {
		logType = log.JSONLogger
	}

	log.Init(log.Options{LogLevel: level, Type: logType, Out: errOut})
	return nil
}

// buildConfig layers defaults, the config file, the environment and the
// explicitly set flags, in that order.
func buildConfig(cmd *cobra.Command, opts *options) (*rename.Config, error) {
	config := rename.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := rename.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("arch-regs") {
		config.ArchRegs = opts.archRegs
	}
	if flags.Changed("phys-regs") {
		config.PhysRegs = opts.physRegs
	}
	if flags.Changed("init-map") {
		config.InitMode = rename.InitUnmapped
		if opts.initMap {
			config.InitMode = rename.InitIdentity
		}
	}
	if flags.Changed("arch-prefix") {
		config.ArchPrefix = opts.archPrefix
	}
	if flags.Changed("phys-prefix") {
		config.PhysPrefix = opts.physPrefix
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Join(rename.ErrConfiguration, err)
	}

	log.CLI.Debug().
		Int("arch_regs", config.ArchRegs).
		Int("phys_regs", config.PhysRegs).
		Str("init_mode", string(config.InitMode)).
		Msg("configuration")

	return config, nil
}

// levelFor picks the summary log level: warn if any instruction was aborted.
func levelFor(faults uint64) zerolog.Level {
	if faults > 0 {
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

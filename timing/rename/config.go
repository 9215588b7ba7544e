package rename

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// InitMode selects the initial state of the alias table.
type InitMode string

const (
	// InitUnmapped leaves every architectural register unmapped and every
	// physical register free.
	InitUnmapped InitMode = "unmapped"
	// InitIdentity maps architectural register a to physical register a.
	InitIdentity InitMode = "identity"
)

// Default register display prefixes.
const (
	DefaultArchPrefix = "R"
	DefaultPhysPrefix = "T"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvArchRegs   = "RATSIM_ARCH_REGS"
	EnvPhysRegs   = "RATSIM_PHYS_REGS"
	EnvInitMode   = "RATSIM_INIT_MODE"
	EnvArchPrefix = "RATSIM_ARCH_PREFIX"
	EnvPhysPrefix = "RATSIM_PHYS_PREFIX"
)

// Config holds the construction parameters of a register alias table.
type Config struct {
	// ArchRegs is the number of architectural registers. Default: 8.
	ArchRegs int `json:"arch_regs" yaml:"arch_regs"`

	// PhysRegs is the number of physical registers. Must be >= ArchRegs.
	// Default: 16.
	PhysRegs int `json:"phys_regs" yaml:"phys_regs"`

	// InitMode is "identity" or "unmapped". Default: unmapped.
	InitMode InitMode `json:"init_mode" yaml:"init_mode"`

	// ArchPrefix is the display prefix of architectural registers and the
	// prefix recognized in instruction operands. Default: "R".
	ArchPrefix string `json:"arch_prefix" yaml:"arch_prefix"`

	// PhysPrefix is the display prefix of physical registers. Default: "T".
	PhysPrefix string `json:"phys_prefix" yaml:"phys_prefix"`
}

// DefaultConfig returns a Config with 8 architectural and 16 physical
// registers, initially unmapped.
func DefaultConfig() *Config {
	return &Config{
		ArchRegs:   8,
		PhysRegs:   16,
		InitMode:   InitUnmapped,
		ArchPrefix: DefaultArchPrefix,
		PhysPrefix: DefaultPhysPrefix,
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig loads a Config from a JSON or YAML file. Fields missing from the
// file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rename config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse rename config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON or YAML file, chosen by extension.
func (c *Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize rename config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write rename config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from RATSIM_* environment variables. The
// environment is re-read on every call.
func (c *Config) ApplyEnv() {
	env.Load()

	c.ArchRegs = env.Int(EnvArchRegs, c.ArchRegs)
	c.PhysRegs = env.Int(EnvPhysRegs, c.PhysRegs)
	c.InitMode = InitMode(env.Str(EnvInitMode, string(c.InitMode)))
	c.ArchPrefix = env.Str(EnvArchPrefix, c.ArchPrefix)
	c.PhysPrefix = env.Str(EnvPhysPrefix, c.PhysPrefix)
}

// Validate checks that the configuration describes a constructible table.
func (c *Config) Validate() error {
	if c.ArchRegs <= 0 {
		return fmt.Errorf("arch_regs must be > 0")
	}
	if c.PhysRegs < c.ArchRegs {
		return fmt.Errorf("phys_regs must be >= arch_regs")
	}
	if c.InitMode != InitIdentity && c.InitMode != InitUnmapped {
		return fmt.Errorf("init_mode must be %q or %q",
			InitIdentity, InitUnmapped)
	}
	if c.ArchPrefix == "" {
		return fmt.Errorf("arch_prefix must not be empty")
	}
	if c.PhysPrefix == "" {
		return fmt.Errorf("phys_prefix must not be empty")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	return &Config{
		ArchRegs:   c.ArchRegs,
		PhysRegs:   c.PhysRegs,
		InitMode:   c.InitMode,
		ArchPrefix: c.ArchPrefix,
		PhysPrefix: c.PhysPrefix,
	}
}

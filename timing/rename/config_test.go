package rename_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ratsim/timing/rename"
)

var _ = Describe("Config", func() {
	Describe("Default values", func() {
		It("should describe an 8 by 16 unmapped table", func() {
			config := rename.DefaultConfig()
			Expect(config.ArchRegs).To(Equal(8))
			Expect(config.PhysRegs).To(Equal(16))
			Expect(config.InitMode).To(Equal(rename.InitUnmapped))
			Expect(config.ArchPrefix).To(Equal("R"))
			Expect(config.PhysPrefix).To(Equal("T"))
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Validate", func() {
		var config *rename.Config

		BeforeEach(func() {
			config = rename.DefaultConfig()
		})

		It("should reject zero architectural registers", func() {
			config.ArchRegs = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("arch_regs")))
		})

		It("should reject fewer physical registers", func() {
			config.PhysRegs = 7
			Expect(config.Validate()).To(MatchError(ContainSubstring("phys_regs")))
		})

		It("should reject unknown init modes", func() {
			config.InitMode = "lazy"
			Expect(config.Validate()).To(MatchError(ContainSubstring("init_mode")))
		})

		It("should reject empty prefixes", func() {
			config.ArchPrefix = ""
			Expect(config.Validate()).To(MatchError(ContainSubstring("arch_prefix")))

			config.ArchPrefix = "R"
			config.PhysPrefix = ""
			Expect(config.Validate()).To(MatchError(ContainSubstring("phys_prefix")))
		})

		It("should surface validation failures as configuration errors", func() {
			config.PhysRegs = 4
			_, err := rename.NewTableWithConfig(config)
			Expect(err).To(MatchError(rename.ErrConfiguration))
		})
	})

	Describe("Clone", func() {
		It("should produce an independent copy", func() {
			config := rename.DefaultConfig()
			clone := config.Clone()
			clone.ArchRegs = 32

			Expect(config.ArchRegs).To(Equal(8))
			Expect(clone.PhysRegs).To(Equal(config.PhysRegs))
		})
	})

	Describe("Loading and saving", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should load JSON and keep defaults for missing fields", func() {
			path := filepath.Join(dir, "rat.json")
			Expect(os.WriteFile(path,
				[]byte(`{"arch_regs": 4, "init_mode": "identity"}`), 0644)).To(Succeed())

			config, err := rename.LoadConfig(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(config.ArchRegs).To(Equal(4))
			Expect(config.PhysRegs).To(Equal(16))
			Expect(config.InitMode).To(Equal(rename.InitIdentity))
			Expect(config.PhysPrefix).To(Equal("T"))
		})

		It("should load YAML", func() {
			path := filepath.Join(dir, "rat.yaml")
			Expect(os.WriteFile(path,
				[]byte("phys_regs: 32\narch_prefix: x\nphys_prefix: p\n"), 0644)).To(Succeed())

			config, err := rename.LoadConfig(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(config.ArchRegs).To(Equal(8))
			Expect(config.PhysRegs).To(Equal(32))
			Expect(config.ArchPrefix).To(Equal("x"))
			Expect(config.PhysPrefix).To(Equal("p"))
		})

		It("should save and reload both formats", func() {
			config := rename.DefaultConfig()
			config.ArchRegs = 6
			config.InitMode = rename.InitIdentity

			for _, name := range []string{"out.json", "out.yml"} {
				path := filepath.Join(dir, name)
				Expect(config.SaveConfig(path)).To(Succeed())

				loaded, err := rename.LoadConfig(path)
				Expect(err).ToNot(HaveOccurred())
				Expect(loaded).To(Equal(config))
			}
		})

		It("should report missing files", func() {
			_, err := rename.LoadConfig(filepath.Join(dir, "missing.json"))
			Expect(err).To(MatchError(ContainSubstring("failed to read")))
		})

		It("should report malformed files", func() {
			path := filepath.Join(dir, "bad.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := rename.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse")))
		})
	})

	Describe("ApplyEnv", func() {
		It("should override fields from the environment", func() {
			GinkgoT().Setenv(rename.EnvArchRegs, "4")
			GinkgoT().Setenv(rename.EnvPhysRegs, "12")
			GinkgoT().Setenv(rename.EnvInitMode, "identity")
			GinkgoT().Setenv(rename.EnvPhysPrefix, "P")

			config := rename.DefaultConfig()
			config.ApplyEnv()

			Expect(config.ArchRegs).To(Equal(4))
			Expect(config.PhysRegs).To(Equal(12))
			Expect(config.InitMode).To(Equal(rename.InitIdentity))
			Expect(config.ArchPrefix).To(Equal("R"))
			Expect(config.PhysPrefix).To(Equal("P"))
		})

		It("should see variables set after an earlier call", func() {
			first := rename.DefaultConfig()
			first.ApplyEnv()
			Expect(first.PhysRegs).To(Equal(16))

			GinkgoT().Setenv(rename.EnvPhysRegs, "9")

			second := rename.DefaultConfig()
			second.ApplyEnv()
			Expect(second.PhysRegs).To(Equal(9))
		})
	})
})

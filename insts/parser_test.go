package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ratsim/insts"
)

var _ = Describe("Parser", func() {
	var parser *insts.Parser

	BeforeEach(func() {
		parser = insts.NewParser()
	})

	Describe("Skipped lines", func() {
		It("should skip blank lines", func() {
			inst, ok, err := parser.ParseLine("   \t ")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(inst).To(BeNil())
		})

		It("should skip comments", func() {
			_, ok, err := parser.ParseLine("  # ADD R1, R2, R3")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Non-branch instructions", func() {
		It("should split opcode and operands", func() {
			inst, ok, err := parser.ParseLine("  ADD R1,R2 ,  #4  ")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())

			Expect(inst.Text).To(Equal("ADD R1,R2 ,  #4"))
			Expect(inst.Opcode).To(Equal("ADD"))
			Expect(inst.Operands).To(Equal([]string{"R1", "R2", "#4"}))
			Expect(inst.IsBranch).To(BeFalse())
			Expect(inst.SkipRename).To(BeFalse())
		})

		It("should accept tabs between opcode and operands", func() {
			inst, _, err := parser.ParseLine("SUB\tR0, R1")
			Expect(err).ToNot(HaveOccurred())
			Expect(inst.Opcode).To(Equal("SUB"))
			Expect(inst.Operands).To(Equal([]string{"R0", "R1"}))
		})

		It("should handle instructions without operands", func() {
			inst, ok, err := parser.ParseLine("NOP")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(inst.Opcode).To(Equal("NOP"))
			Expect(inst.Operands).To(BeEmpty())
		})
	})

	Describe("Branch classification", func() {
		DescribeTable("should classify by opcode",
			func(line string, branch bool) {
				inst, _, err := parser.ParseLine(line)
				Expect(err).ToNot(HaveOccurred())
				Expect(inst.IsBranch).To(Equal(branch))
			},
			Entry("B", "B LOOP", true),
			Entry("BEQ", "BEQ R1, R2, DONE", true),
			Entry("lower-case bne", "bne R1, R2, DONE", true),
			Entry("ADD", "ADD R1, R2, R3", false),
			Entry("MUL", "MUL R1, R2, R3", false),
			Entry("BIC by prefix", "BIC R1, R2, R3", true),
		)
	})

	Describe("Skip marker", func() {
		It("should strip the marker and flag the instruction", func() {
			inst, ok, err := parser.ParseLine("!  MOV R3, #1")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(inst.SkipRename).To(BeTrue())
			Expect(inst.Text).To(Equal("!  MOV R3, #1"))
			Expect(inst.Opcode).To(Equal("MOV"))
			Expect(inst.Operands).To(Equal([]string{"R3", "#1"}))
		})

		It("should reject a bare marker", func() {
			_, ok, err := parser.ParseLine("!")
			Expect(ok).To(BeTrue())
			Expect(err).To(MatchError(insts.ErrEmptyInstruction))
		})
	})
})

package riscv

import (
	"github.com/zeroqn/woss/common"
	"golang.org/x/xerrors"
)

// ErrHalted is returned by Step when the core has already halted (ran
// out of cycles, or previously executed an ECALL), and when the fetched
// instruction word is all zero, which also stops the core.
var ErrHalted = xerrors.New("riscv: core is halted")

// Step fetches, decodes and executes exactly one instruction at c.PC
// against mem, then advances c.PC to c.NextPC and increments c.Cycles.
// It is the unit of work original_source's prove_next_step/
// execute_next_step traces exactly one of.
func Step[W common.Word](c *Core[W], mem Memory) error {
	if c.Halted() {
		return ErrHalted
	}
	raw, err := mem.Load32(uint64(c.PC))
	if err != nil {
		return xerrors.Errorf("riscv: fetch at %#x: %w", uint64(c.PC), err)
	}
	if raw == 0 {
		// All-zero is RISC-V's reserved illegal-instruction encoding, the
		// signature left by unprogrammed or absent memory. Treat it as a
		// halt rather than a fault, so a machine with no instructions
		// loaded simply never executes instead of erroring out.
		c.Running = false
		return ErrHalted
	}
	d := decode(raw)
	nextPC := c.PC + 4

	switch d.opcode {
	case opLui:
		c.SetReg(d.rd, W(d.uImm))
	case opAuipc:
		c.SetReg(d.rd, c.PC+W(d.uImm))
	case opJal:
		c.SetReg(d.rd, nextPC)
		nextPC = c.PC + W(d.jImm)
	case opJalr:
		target := c.Reg(d.rs1) + W(d.iImm)
		target &^= 1
		c.SetReg(d.rd, nextPC)
		nextPC = target
	case opBranch:
		if execBranch(c, d) {
			nextPC = c.PC + W(d.bImm)
		}
	case opImm:
		if err := execOpImm(c, d); err != nil {
			return err
		}
	case opOp:
		execOp(c, d)
	case opLoad:
		if err := execLoad(c, mem, d); err != nil {
			return err
		}
	case opStore:
		if err := execStore(c, mem, d); err != nil {
			return err
		}
	case opImm32:
		execOpImm32(c, d)
	case opOp32:
		execOp32(c, d)
	case opSystem:
		// ECALL/EBREAK: this core treats any SYSTEM instruction as a
		// halt, matching original_source's RVEcallHalt convention.
		c.Running = false
	default:
		return xerrors.Errorf("riscv: unsupported opcode %#x at pc=%#x", d.opcode, uint64(c.PC))
	}

	c.NextPC = nextPC
	c.PC = nextPC
	c.Cycles++
	return nil
}

func execBranch[W common.Word](c *Core[W], d inst) bool {
	a, b := c.Reg(d.rs1), c.Reg(d.rs2)
	switch d.funct3 {
	case 0: // BEQ
		return a == b
	case 1: // BNE
		return a != b
	case 4: // BLT
		return signed(a) < signed(b)
	case 5: // BGE
		return signed(a) >= signed(b)
	case 6: // BLTU
		return a < b
	case 7: // BGEU
		return a >= b
	default:
		return false
	}
}

// signed reinterprets an unsigned register value as signed, at whatever
// bit width W actually is, by sign-extending from W's own top bit
// through int64.
func signed[W common.Word](v W) int64 {
	switch any(v).(type) {
	case uint32:
		return int64(int32(uint32(v)))
	default:
		return int64(v)
	}
}

func execOpImm[W common.Word](c *Core[W], d inst) error {
	a := c.Reg(d.rs1)
	var result W
	switch d.funct3 {
	case 0: // ADDI
		result = a + W(d.iImm)
	case 2: // SLTI
		result = boolToWord[W](signed(a) < d.iImm)
	case 3: // SLTIU
		result = boolToWord[W](a < W(d.iImm))
	case 4: // XORI
		result = a ^ W(d.iImm)
	case 6: // ORI
		result = a | W(d.iImm)
	case 7: // ANDI
		result = a & W(d.iImm)
	case 1: // SLLI
		result = a << (d.shamt & shiftMask(a))
	case 5: // SRLI/SRAI
		if d.funct7&0x20 != 0 {
			result = W(signed(a) >> (d.shamt & shiftMask(a)))
		} else {
			result = a >> (d.shamt & shiftMask(a))
		}
	default:
		return xerrors.Errorf("riscv: unsupported OP-IMM funct3 %d", d.funct3)
	}
	c.SetReg(d.rd, result)
	return nil
}

func shiftMask[W common.Word](a W) uint32 {
	if _, ok := any(a).(uint32); ok {
		return 0x1f
	}
	return 0x3f
}

func boolToWord[W common.Word](b bool) W {
	if b {
		return 1
	}
	return 0
}

func execOp[W common.Word](c *Core[W], d inst) {
	a, b := c.Reg(d.rs1), c.Reg(d.rs2)
	var result W
	switch {
	case d.funct7 == 0x01: // M extension
		result = execMulDiv(a, b, d.funct3)
	case d.funct3 == 0 && d.funct7 == 0x20: // SUB
		result = a - b
	case d.funct3 == 0: // ADD
		result = a + b
	case d.funct3 == 1: // SLL
		result = a << (uint32(b) & shiftMask(a))
	case d.funct3 == 2: // SLT
		result = boolToWord[W](signed(a) < signed(b))
	case d.funct3 == 3: // SLTU
		result = boolToWord[W](a < b)
	case d.funct3 == 4: // XOR
		result = a ^ b
	case d.funct3 == 5 && d.funct7 == 0x20: // SRA
		result = W(signed(a) >> (uint32(b) & shiftMask(a)))
	case d.funct3 == 5: // SRL
		result = a >> (uint32(b) & shiftMask(a))
	case d.funct3 == 6: // OR
		result = a | b
	case d.funct3 == 7: // AND
		result = a & b
	}
	c.SetReg(d.rd, result)
}

func execMulDiv[W common.Word](a, b W, funct3 uint32) W {
	switch funct3 {
	case 0: // MUL
		return a * b
	case 1: // MULH (signed x signed, high bits)
		return W((signed(a) * signed(b)) >> 32)
	case 2: // MULHSU
		return W((signed(a) * int64(b)) >> 32)
	case 3: // MULHU
		return W((uint64(a) * uint64(b)) >> 32)
	case 4: // DIV
		if b == 0 {
			return W(-1)
		}
		return W(signed(a) / signed(b))
	case 5: // DIVU
		if b == 0 {
			var max W
			return ^max
		}
		return a / b
	case 6: // REM
		if b == 0 {
			return a
		}
		return W(signed(a) % signed(b))
	case 7: // REMU
		if b == 0 {
			return a
		}
		return a % b
	default:
		return 0
	}
}

func execLoad[W common.Word](c *Core[W], mem Memory, d inst) error {
	addr := uint64(c.Reg(d.rs1) + W(d.iImm))
	switch d.funct3 {
	case 0: // LB
		v, err := mem.Load8(addr)
		if err != nil {
			return err
		}
		c.SetReg(d.rd, W(int64(int8(v))))
	case 1: // LH
		v, err := mem.Load16(addr)
		if err != nil {
			return err
		}
		c.SetReg(d.rd, W(int64(int16(v))))
	case 2: // LW
		v, err := mem.Load32(addr)
		if err != nil {
			return err
		}
		c.SetReg(d.rd, W(int64(int32(v))))
	case 3: // LD (RV64 only)
		v, err := mem.Load64(addr)
		if err != nil {
			return err
		}
		c.SetReg(d.rd, W(v))
	case 4: // LBU
		v, err := mem.Load8(addr)
		if err != nil {
			return err
		}
		c.SetReg(d.rd, W(v))
	case 5: // LHU
		v, err := mem.Load16(addr)
		if err != nil {
			return err
		}
		c.SetReg(d.rd, W(v))
	case 6: // LWU (RV64 only)
		v, err := mem.Load32(addr)
		if err != nil {
			return err
		}
		c.SetReg(d.rd, W(v))
	default:
		return xerrors.Errorf("riscv: unsupported LOAD funct3 %d", d.funct3)
	}
	return nil
}

func execStore[W common.Word](c *Core[W], mem Memory, d inst) error {
	addr := uint64(c.Reg(d.rs1) + W(d.sImm))
	v := c.Reg(d.rs2)
	switch d.funct3 {
	case 0:
		return mem.Store8(addr, uint8(v))
	case 1:
		return mem.Store16(addr, uint16(v))
	case 2:
		return mem.Store32(addr, uint32(v))
	case 3:
		return mem.Store64(addr, uint64(v))
	default:
		return xerrors.Errorf("riscv: unsupported STORE funct3 %d", d.funct3)
	}
}

func execOpImm32[W common.Word](c *Core[W], d inst) {
	a := uint32(c.Reg(d.rs1))
	var result uint32
	switch d.funct3 {
	case 0: // ADDIW
		result = a + uint32(d.iImm)
	case 1: // SLLIW
		result = a << (d.shamt & 0x1f)
	case 5:
		if d.funct7&0x20 != 0 { // SRAIW
			result = uint32(int32(a) >> (d.shamt & 0x1f))
		} else { // SRLIW
			result = a >> (d.shamt & 0x1f)
		}
	}
	c.SetReg(d.rd, W(int64(int32(result))))
}

func execOp32[W common.Word](c *Core[W], d inst) {
	a, b := uint32(c.Reg(d.rs1)), uint32(c.Reg(d.rs2))
	var result uint32
	switch {
	case d.funct3 == 0 && d.funct7 == 0x20: // SUBW
		result = a - b
	case d.funct3 == 0: // ADDW
		result = a + b
	case d.funct3 == 1: // SLLW
		result = a << (b & 0x1f)
	case d.funct3 == 5 && d.funct7 == 0x20: // SRAW
		result = uint32(int32(a) >> (b & 0x1f))
	case d.funct3 == 5: // SRLW
		result = a >> (b & 0x1f)
	}
	c.SetReg(d.rd, W(int64(int32(result))))
}

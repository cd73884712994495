package main

import "encoding/binary"

// Minimal RV32I encoders for the handful of instructions the built-in demo
// program needs. Real programs are loaded from a raw binary via -program;
// this is only the fallback used when no such file is given.

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return (u>>5)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1f)<<7 | opcode
}

func encodeSystem() uint32 {
	// ECALL: all fields zero except opcode.
	return 0x73
}

const (
	opImm   = 0x13
	opStore = 0x23
)

// buildDemoProgram returns a small self-contained RV32I program: it writes
// a word to memory, does a little arithmetic over it, and halts via ECALL.
// Every instruction is 4 bytes so step counts are easy to reason about when
// reading the demo's console output.
func buildDemoProgram() []byte {
	instrs := []uint32{
		encodeI(opImm, 1, 0, 0, 64),   // addi x1, x0, 64      ; x1 = scratch address
		encodeI(opImm, 2, 0, 0, 7),    // addi x2, x0, 7
		encodeI(opImm, 3, 0, 0, 5),    // addi x3, x0, 5
		encodeS(opStore, 2, 1, 2, 0),  // sw x2, 0(x1)         ; mem[64] = 7
		encodeI(opImm, 4, 0, 1, 0),    // addi x4, x1, 0       ; x4 = x1 (copy)
		encodeI(opImm, 5, 0, 3, 3),    // addi x5, x3, 3       ; x5 = 8
		encodeSystem(),                // ecall                ; halt
	}
	buf := make([]byte, 4*len(instrs))
	for i, w := range instrs {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

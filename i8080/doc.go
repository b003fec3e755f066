// Package i8080 is the Intel 8080 instruction set, as a cpu.Target.
//
// All 244 documented opcodes decode, execute, assemble and disassemble.
// The twelve undocumented opcode slots are unknown instructions.
//
// Assembly syntax is lowercase, with comma separated operands. Byte operands
// are written as 0x%02x and word operands as 0x%04x:
//
//	mvi a,0x05
//	lxi h,0x1234
//	mov m,a
//	rst 7
package i8080

// Package cpu implements the processor core of an emulated machine and a
// macro-free assembler for its instruction sets.
//
// A Processor owns a register file and a clock, and drives the
// fetch/decode/execute cycle of a Target over a memory and an I/O address
// space. The Target supplies everything that depends on the instruction set:
// instruction lengths, decoding, execution, and the assembly syntax of single
// instructions.
//
// The Assembler turns source text into a Program of encoded instructions,
// supporting labels, equates, data directives, and compile-time $(...)
// expression evaluation.
package cpu

package device

// Width is the size of a single access, in bits.
type Width int

//go:generate go tool stringer -linecomment -type=Width
const (
	W8  = Width(8)  // byte
	W16 = Width(16) // word
	W32 = Width(32) // dword
	W64 = Width(64) // qword
)

// Widths lists all supported access widths, narrowest first.
var Widths = []Width{W8, W16, W32, W64}

// Valid returns true if the width is one of W8, W16, W32 or W64.
func (w Width) Valid() bool {
	switch w {
	case W8, W16, W32, W64:
		return true
	}
	return false
}

// Bytes returns the number of bytes covered by an access of this width.
func (w Width) Bytes() uint64 {
	return uint64(w) / 8
}

// Mask returns the value mask for the width.
func (w Width) Mask() uint64 {
	if w >= W64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(w)) - 1
}

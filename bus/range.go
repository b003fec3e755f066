package bus

// Range is a closed-open global address range [Base, Base+Size) owned by a
// named device.
type Range struct {
	Name string
	Base uint64
	Size uint64
}

// Last returns the last address in the range.
func (r Range) Last() uint64 {
	return r.Base + r.Size - 1
}

// Contains returns true if the address is in the range.
func (r Range) Contains(addr uint64) bool {
	return addr >= r.Base && addr-r.Base < r.Size
}

// Overlaps returns true if the two ranges have any address in common.
func (r Range) Overlaps(other Range) bool {
	if r.Size == 0 || other.Size == 0 {
		return false
	}
	return r.Base <= other.Last() && other.Base <= r.Last()
}

func (r Range) String() string {
	return f("%v[0x%04x-0x%04x]", r.Name, r.Base, r.Last())
}

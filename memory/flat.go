package memory

// Flat is a plain byte-slice memory used only as a reference oracle in
// tests: SMTMemory's load/store semantics must agree with it on any
// sequence of operations, the way original_source's proptest suite
// checks SMTMemory against ckb_vm::FlatMemory.
type Flat struct {
	bytes []byte
}

// NewFlat returns a zeroed Flat of the given size.
func NewFlat(size uint64) *Flat {
	return &Flat{bytes: make([]byte, size)}
}

func (f *Flat) GetData(addr, length uint64) []byte {
	out := make([]byte, length)
	copy(out, f.bytes[addr:addr+length])
	return out
}

func (f *Flat) UpdateData(addr uint64, data []byte) {
	copy(f.bytes[addr:addr+uint64(len(data))], data)
}

// Package memory implements byte-addressable RISC-V memory backed by a
// sparse Merkle tree, so that every load/store is a content-addressed,
// provable operation instead of a flat byte array. It follows
// original_source's memory.rs: a "Flag" key family for per-page
// protection flags and a "Data" key family for 32-byte-aligned data
// chunks, both derived by hashing a little-endian page/chunk index under
// the "woss" domain tag.
package memory

import (
	"encoding/binary"

	"github.com/zeroqn/woss/common"
	"golang.org/x/xerrors"
)

// PageSize is the granularity at which protection flags are tracked.
const PageSize = 4096

// DataChunkSize is the granularity at which memory content is tracked;
// every load/store is decomposed into one or more 32-byte-aligned chunk
// reads/writes so a single SMT leaf ever needs touching per 32 bytes.
const DataChunkSize = 32

var keyHasher = common.WOSSHasher()

// flagKey returns the SMT key for page's protection-flag byte.
func flagKey(page uint32) common.Byte32 {
	return keyHasher.Sum([]byte("Flag"), common.FromU64LE(uint64(page)))
}

// dataChunkKey returns the SMT key for the 32-byte chunk containing addr.
func dataChunkKey(addr uint64) common.Byte32 {
	return keyHasher.Sum([]byte("Data"), common.FromU64LE(addr/DataChunkSize))
}

// Store is the plain keyed byte32 store SMTMemory runs over. smt's
// ProverStore satisfies it directly; a restored VerifierStore, whose
// methods return errors, is reached through smt.VerifierAdapter.
type Store interface {
	Get(key common.Byte32) common.Byte32
	Update(key, value common.Byte32)
}

// SMTMemory is byte-addressable memory over a Store. It is generic over
// the register width W purely so callers can name memory.SMTMemory[W]
// alongside riscv.Core[W] and machine.Machine[W]; memory access itself
// always operates on plain uint64 addresses and byte slices.
type SMTMemory[W common.Word] struct {
	store Store
	size  uint64
}

// New returns an SMTMemory of the given byte size backed by store.
func New[W common.Word](store Store, size uint64) *SMTMemory[W] {
	return &SMTMemory[W]{store: store, size: size}
}

// Size returns the addressable memory size in bytes.
func (m *SMTMemory[W]) Size() uint64 {
	return m.size
}

func (m *SMTMemory[W]) checkAddr(addr uint64, length uint64) error {
	if length == 0 {
		return nil
	}
	if addr+length < addr || addr+length > m.size {
		return xerrors.Errorf("memory: address out of bounds: addr=%#x len=%d size=%#x", addr, length, m.size)
	}
	return nil
}

// GetData reads length bytes starting at addr, crossing chunk boundaries
// as needed.
func (m *SMTMemory[W]) GetData(addr uint64, length uint64) ([]byte, error) {
	if err := m.checkAddr(addr, length); err != nil {
		return nil, err
	}
	out := make([]byte, length)
	var read uint64
	for read < length {
		cur := addr + read
		chunkBase := (cur / DataChunkSize) * DataChunkSize
		offsetInChunk := cur - chunkBase
		chunkVal := m.store.Get(dataChunkKey(cur))
		avail := DataChunkSize - offsetInChunk
		want := length - read
		n := avail
		if want < n {
			n = want
		}
		copy(out[read:read+n], chunkVal[offsetInChunk:offsetInChunk+n])
		read += n
	}
	return out, nil
}

// FlagDirty marks a page as written to since it was last cleared, mirroring
// ckb_vm::memory::set_dirty's use in original_source's store/store_bytes/
// store_byte paths.
const FlagDirty uint8 = 0x01

// markDirty sets FlagDirty on every page touched by [addr, addr+length).
func (m *SMTMemory[W]) markDirty(addr, length uint64) {
	if length == 0 {
		return
	}
	startPage := addr / PageSize
	endPage := (addr + length - 1) / PageSize
	for p := startPage; p <= endPage; p++ {
		m.SetFlag(p*PageSize, FlagDirty)
	}
}

// UpdateData writes data starting at addr, crossing chunk boundaries as
// needed, read-modify-writing each partially touched chunk. Every page in
// the written range is marked dirty before the write. Aligned stores and
// StoreBytes both funnel through here; there is no separate single-byte
// fill operation.
func (m *SMTMemory[W]) UpdateData(addr uint64, data []byte) error {
	length := uint64(len(data))
	if err := m.checkAddr(addr, length); err != nil {
		return err
	}
	m.markDirty(addr, length)
	var written uint64
	for written < length {
		cur := addr + written
		chunkBase := (cur / DataChunkSize) * DataChunkSize
		offsetInChunk := cur - chunkBase
		key := dataChunkKey(cur)
		chunkVal := m.store.Get(key)
		avail := DataChunkSize - offsetInChunk
		want := length - written
		n := avail
		if want < n {
			n = want
		}
		copy(chunkVal[offsetInChunk:offsetInChunk+n], data[written:written+n])
		m.store.Update(key, chunkVal)
		written += n
	}
	return nil
}

// LoadBytes reads length bytes starting at addr.
func (m *SMTMemory[W]) LoadBytes(addr uint64, length uint64) ([]byte, error) {
	return m.GetData(addr, length)
}

// StoreBytes writes data starting at addr with one UpdateData call, which
// writes each touched 32-byte chunk once.
func (m *SMTMemory[W]) StoreBytes(addr uint64, data []byte) error {
	return m.UpdateData(addr, data)
}

func (m *SMTMemory[W]) load(addr uint64, width int) (uint64, error) {
	data, err := m.GetData(addr, uint64(width))
	if err != nil {
		return 0, err
	}
	buf := make([]byte, 8)
	copy(buf, data)
	return binary.LittleEndian.Uint64(buf), nil
}

func (m *SMTMemory[W]) store(addr uint64, width int, val uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, val)
	return m.UpdateData(addr, buf[:width])
}

// Load8 reads one byte at addr.
func (m *SMTMemory[W]) Load8(addr uint64) (uint8, error) {
	v, err := m.load(addr, 1)
	return uint8(v), err
}

// Load16 reads a little-endian halfword at addr.
func (m *SMTMemory[W]) Load16(addr uint64) (uint16, error) {
	v, err := m.load(addr, 2)
	return uint16(v), err
}

// Load32 reads a little-endian word at addr.
func (m *SMTMemory[W]) Load32(addr uint64) (uint32, error) {
	v, err := m.load(addr, 4)
	return uint32(v), err
}

// Load64 reads a little-endian doubleword at addr.
func (m *SMTMemory[W]) Load64(addr uint64) (uint64, error) {
	return m.load(addr, 8)
}

// Store8 writes one byte at addr.
func (m *SMTMemory[W]) Store8(addr uint64, val uint8) error {
	return m.store(addr, 1, uint64(val))
}

// Store16 writes a little-endian halfword at addr.
func (m *SMTMemory[W]) Store16(addr uint64, val uint16) error {
	return m.store(addr, 2, uint64(val))
}

// Store32 writes a little-endian word at addr.
func (m *SMTMemory[W]) Store32(addr uint64, val uint32) error {
	return m.store(addr, 4, uint64(val))
}

// Store64 writes a little-endian doubleword at addr.
func (m *SMTMemory[W]) Store64(addr uint64, val uint64) error {
	return m.store(addr, 8, val)
}

// FetchFlag returns the protection-flag byte for the page containing
// addr.
func (m *SMTMemory[W]) FetchFlag(addr uint64) uint8 {
	page := uint32(addr / PageSize)
	v := m.store.Get(flagKey(page))
	return v.ToU8()
}

// SetFlag ORs flag into the page containing addr's protection byte.
func (m *SMTMemory[W]) SetFlag(addr uint64, flag uint8) {
	page := uint32(addr / PageSize)
	key := flagKey(page)
	cur := m.store.Get(key)
	cur[0] |= flag
	m.store.Update(key, cur)
}

// ClearFlag clears flag from the page containing addr's protection byte.
func (m *SMTMemory[W]) ClearFlag(addr uint64, flag uint8) {
	page := uint32(addr / PageSize)
	key := flagKey(page)
	cur := m.store.Get(key)
	cur[0] &^= flag
	m.store.Update(key, cur)
}

// Root returns the memory's current content commitment. It requires the
// underlying store to additionally implement a Root() method (every
// concrete Store used in this module does).
func (m *SMTMemory[W]) Root() common.Byte32 {
	type rooter interface{ Root() common.Byte32 }
	r, ok := m.store.(rooter)
	if !ok {
		panic("memory: underlying store does not support Root()")
	}
	return r.Root()
}

// Commitment returns the (size, root) MemoryCommitment for this memory.
func (m *SMTMemory[W]) Commitment() Commitment {
	return Commitment{Size: m.size, Root: m.Root()}
}

// tracerStore is satisfied by *Tracer; SMTMemory type-asserts its store to
// this interface so tracer controls can be reached through the memory
// surface itself instead of requiring a Machine to hold its own separate
// reference to the Tracer wrapping its store.
type tracerStore interface {
	Enable()
	Disable()
	ProveTraces(size uint64) (*Proof, error)
}

// EnableTracer arms tracing for a new measured window. It panics if the
// underlying store is not a *Tracer: tracing is a Prover-only capability,
// never available over a restored VerifierAdapter.
func (m *SMTMemory[W]) EnableTracer() {
	t, ok := m.store.(tracerStore)
	if !ok {
		panic("memory: underlying store does not support tracing")
	}
	t.Enable()
}

// DisableTracer disarms tracing without discarding the last window's trace.
func (m *SMTMemory[W]) DisableTracer() {
	t, ok := m.store.(tracerStore)
	if !ok {
		panic("memory: underlying store does not support tracing")
	}
	t.Disable()
}

// ProveTraces returns a Proof covering every key touched since EnableTracer
// was last called, against this memory's size.
func (m *SMTMemory[W]) ProveTraces() (*Proof, error) {
	t, ok := m.store.(tracerStore)
	if !ok {
		panic("memory: underlying store does not support tracing")
	}
	return t.ProveTraces(m.size)
}

// Package common provides the 32-byte value type and domain-separated
// keyed hashing shared by every layer of the fraud-proof core: SMT keys and
// values, register/PC windows, and state commitments are all Byte32.
package common

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/xerrors"
)

// Size is the width, in bytes, of every key, value and commitment in this
// module.
const Size = 32

// Byte32 is a 32-byte array used simultaneously as an SMT key, an SMT
// value, and a little-endian integer window padded with zeros.
type Byte32 [Size]byte

// Zero is the all-zero Byte32, the default/empty SMT leaf value.
var Zero Byte32

// FromU8 returns a Byte32 with val in byte 0 and the rest zeroed.
func FromU8(val uint8) Byte32 {
	var b Byte32
	b[0] = val
	return b
}

// ToU8 returns byte 0.
func (b Byte32) ToU8() uint8 {
	return b[0]
}

// ToU16 decodes bytes [0:2] as little-endian.
func (b Byte32) ToU16() uint16 {
	return binary.LittleEndian.Uint16(b[0:2])
}

// ToU32 decodes bytes [0:4] as little-endian.
func (b Byte32) ToU32() uint32 {
	return binary.LittleEndian.Uint32(b[0:4])
}

// FromU64 returns a Byte32 with val little-endian encoded in bytes [0:8].
func FromU64(val uint64) Byte32 {
	var b Byte32
	binary.LittleEndian.PutUint64(b[0:8], val)
	return b
}

// ToU64 decodes bytes [0:8] as little-endian.
func (b Byte32) ToU64() uint64 {
	return binary.LittleEndian.Uint64(b[0:8])
}

// ReadValue copies len(buf) bytes starting at offset into buf. It requires
// offset+len(buf) <= Size.
func (b Byte32) ReadValue(buf []byte, offset int) error {
	if offset < 0 || offset+len(buf) > Size {
		return xerrors.Errorf("common: ReadValue out of range: offset=%d len=%d", offset, len(buf))
	}
	copy(buf, b[offset:offset+len(buf)])
	return nil
}

// WriteValue writes value at offset. It requires offset+len(value) <= Size.
func (b *Byte32) WriteValue(value []byte, offset int) error {
	if offset < 0 || offset+len(value) > Size {
		return xerrors.Errorf("common: WriteValue out of range: offset=%d len=%d", offset, len(value))
	}
	copy(b[offset:offset+len(value)], value)
	return nil
}

// Bytes returns a fresh copy of the underlying 32 bytes.
func (b Byte32) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, b[:])
	return out
}

// String renders the value as a hex string, matching the teacher's
// Serializable.String() convention (see trie_blake2b_32.vectorCommitment).
func (b Byte32) String() string {
	return hex.EncodeToString(b[:])
}

// Byte32FromSlice builds a Byte32 from a slice of exactly Size bytes.
func Byte32FromSlice(s []byte) (Byte32, error) {
	var b Byte32
	if len(s) != Size {
		return b, xerrors.Errorf("common: Byte32FromSlice wrong length %d, want %d", len(s), Size)
	}
	copy(b[:], s)
	return b, nil
}

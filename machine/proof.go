package machine

import (
	"bytes"
	"io"
	"sort"

	"github.com/zeroqn/woss/common"
	"github.com/zeroqn/woss/memory"
	"github.com/zeroqn/woss/smt"
	"golang.org/x/xerrors"
)

// StepProof carries everything needed to recreate a Machine at step
// StepNum, execute one instruction, and obtain the Machine at step
// StepNum+1: the pre-step register file, PC/NextPC, the memory witness for
// that one instruction, and the scalar control fields.
type StepProof[W common.Word] struct {
	StepNum   uint64
	Registers [32]W
	PC        W
	NextPC    W
	Memory    *memory.Proof
	Cycles    uint64
	MaxCycles uint64
	Running   bool
	ISA       uint8
	Version   uint32
}

// EncodeStepProof serializes sp as a fixed-width little-endian binary
// record: step_num u64, registers [R;32], pc R, next_pc R, memory
// MemoryProof, cycles u64, max_cycles u64, running u8, isa u8, version u32.
// R is 4 bytes for a uint32 Machine, 8 bytes for a uint64 one.
func EncodeStepProof[W common.Word](sp *StepProof[W]) ([]byte, error) {
	var buf bytes.Buffer
	bits := bitsOf[W]()

	if err := common.WriteUint64(&buf, sp.StepNum); err != nil {
		return nil, err
	}
	for _, r := range sp.Registers {
		if err := writeWord(&buf, r, bits); err != nil {
			return nil, err
		}
	}
	if err := writeWord(&buf, sp.PC, bits); err != nil {
		return nil, err
	}
	if err := writeWord(&buf, sp.NextPC, bits); err != nil {
		return nil, err
	}
	if err := writeMemoryProof(&buf, sp.Memory); err != nil {
		return nil, err
	}
	if err := common.WriteUint64(&buf, sp.Cycles); err != nil {
		return nil, err
	}
	if err := common.WriteUint64(&buf, sp.MaxCycles); err != nil {
		return nil, err
	}
	if err := common.WriteByte(&buf, boolToByte(sp.Running)); err != nil {
		return nil, err
	}
	if err := common.WriteByte(&buf, sp.ISA); err != nil {
		return nil, err
	}
	if err := common.WriteUint32(&buf, sp.Version); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeStepProof deserializes a StepProof previously produced by
// EncodeStepProof.
func DecodeStepProof[W common.Word](data []byte) (*StepProof[W], error) {
	r := bytes.NewReader(data)
	bits := bitsOf[W]()
	sp := &StepProof[W]{}

	if err := common.ReadUint64(r, &sp.StepNum); err != nil {
		return nil, xerrors.Errorf("machine: DecodeStepProof: step_num: %w", err)
	}
	for i := range sp.Registers {
		v, err := readWord[W](r, bits)
		if err != nil {
			return nil, xerrors.Errorf("machine: DecodeStepProof: registers[%d]: %w", i, err)
		}
		sp.Registers[i] = v
	}
	pc, err := readWord[W](r, bits)
	if err != nil {
		return nil, xerrors.Errorf("machine: DecodeStepProof: pc: %w", err)
	}
	sp.PC = pc
	nextPC, err := readWord[W](r, bits)
	if err != nil {
		return nil, xerrors.Errorf("machine: DecodeStepProof: next_pc: %w", err)
	}
	sp.NextPC = nextPC

	mp, err := readMemoryProof(r)
	if err != nil {
		return nil, xerrors.Errorf("machine: DecodeStepProof: memory: %w", err)
	}
	sp.Memory = mp

	if err := common.ReadUint64(r, &sp.Cycles); err != nil {
		return nil, xerrors.Errorf("machine: DecodeStepProof: cycles: %w", err)
	}
	if err := common.ReadUint64(r, &sp.MaxCycles); err != nil {
		return nil, xerrors.Errorf("machine: DecodeStepProof: max_cycles: %w", err)
	}
	running, err := common.ReadByte(r)
	if err != nil {
		return nil, xerrors.Errorf("machine: DecodeStepProof: running: %w", err)
	}
	sp.Running = running != 0
	isa, err := common.ReadByte(r)
	if err != nil {
		return nil, xerrors.Errorf("machine: DecodeStepProof: isa: %w", err)
	}
	sp.ISA = isa
	if err := common.ReadUint32(r, &sp.Version); err != nil {
		return nil, xerrors.Errorf("machine: DecodeStepProof: version: %w", err)
	}
	return sp, nil
}

// writeWord serializes v as a little-endian integer bits wide (32 or 64).
func writeWord[W common.Word](w io.Writer, v W, bits uint32) error {
	if bits == 32 {
		return common.WriteUint32(w, uint32(v))
	}
	return common.WriteUint64(w, uint64(v))
}

func readWord[W common.Word](r io.Reader, bits uint32) (W, error) {
	if bits == 32 {
		var v uint32
		if err := common.ReadUint32(r, &v); err != nil {
			return 0, err
		}
		return W(v), nil
	}
	var v uint64
	if err := common.ReadUint64(r, &v); err != nil {
		return 0, err
	}
	return W(v), nil
}

// writeMemoryProof serializes a memory.Proof as: memory_size u64, root
// [32]byte, kv_count u32, kv_count * (key [32]byte, value [32]byte),
// merkle_proof as a length-prefixed byte blob (smt.Proof's own wire form).
// kvs are written in sorted key order so encoding is deterministic despite
// memory.Proof.KVs being a Go map.
func writeMemoryProof(w io.Writer, p *memory.Proof) error {
	if err := common.WriteUint64(w, p.MemorySize); err != nil {
		return err
	}
	if _, err := w.Write(p.Root[:]); err != nil {
		return err
	}
	keys := make([]common.Byte32, 0, len(p.KVs))
	for k := range p.KVs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })

	if err := common.WriteUint32(w, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if _, err := w.Write(k[:]); err != nil {
			return err
		}
		v := p.KVs[k]
		if _, err := w.Write(v[:]); err != nil {
			return err
		}
	}
	return common.WriteBytes32(w, p.MerkleProof.Bytes())
}

func readMemoryProof(r io.Reader) (*memory.Proof, error) {
	p := &memory.Proof{}
	if err := common.ReadUint64(r, &p.MemorySize); err != nil {
		return nil, xerrors.Errorf("memory_size: %w", err)
	}
	var root [common.Size]byte
	if _, err := io.ReadFull(r, root[:]); err != nil {
		return nil, xerrors.Errorf("root: %w", err)
	}
	p.Root = root

	var count uint32
	if err := common.ReadUint32(r, &count); err != nil {
		return nil, xerrors.Errorf("kv count: %w", err)
	}
	p.KVs = make(map[common.Byte32]common.Byte32, count)
	for i := uint32(0); i < count; i++ {
		var k, v [common.Size]byte
		if _, err := io.ReadFull(r, k[:]); err != nil {
			return nil, xerrors.Errorf("kv[%d] key: %w", i, err)
		}
		if _, err := io.ReadFull(r, v[:]); err != nil {
			return nil, xerrors.Errorf("kv[%d] value: %w", i, err)
		}
		p.KVs[common.Byte32(k)] = common.Byte32(v)
	}

	proofBytes, err := common.ReadBytes32(r)
	if err != nil {
		return nil, xerrors.Errorf("merkle_proof: %w", err)
	}
	mp, err := smt.ProofFromBytes(proofBytes)
	if err != nil {
		return nil, xerrors.Errorf("merkle_proof decode: %w", err)
	}
	p.MerkleProof = mp
	return p, nil
}

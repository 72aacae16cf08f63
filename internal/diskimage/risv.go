package diskimage

import (
	"encoding/binary"

	"github.com/tefla/wire-hdl/api"
)

// RISVHeaderSize is the fixed size of a RISV executable header.
const RISVHeaderSize = 24

// risvMagic is "RISV" read as a little-endian uint32 (0x56534952).
const risvMagic uint32 = 0x56534952

const (
	risvOffMagic     = 0
	risvOffEntry     = 4
	risvOffCodeSize  = 8
	risvOffDataSize  = 12
	risvOffBssSize   = 16
	risvOffStackSize = 20
)

// RISVHeader is a RISV executable's 24-byte header: a magic number, the
// entry point offset, and the code/data/bss/stack segment sizes, all
// little-endian.
type RISVHeader struct {
	EntryOffset uint32
	CodeSize    uint32
	DataSize    uint32
	BssSize     uint32
	StackSize   uint32
}

// EncodeRISVHeader packs h into its 24-byte on-disk form.
func EncodeRISVHeader(h RISVHeader) []byte {
	out := make([]byte, RISVHeaderSize)
	binary.LittleEndian.PutUint32(out[risvOffMagic:], risvMagic)
	binary.LittleEndian.PutUint32(out[risvOffEntry:], h.EntryOffset)
	binary.LittleEndian.PutUint32(out[risvOffCodeSize:], h.CodeSize)
	binary.LittleEndian.PutUint32(out[risvOffDataSize:], h.DataSize)
	binary.LittleEndian.PutUint32(out[risvOffBssSize:], h.BssSize)
	binary.LittleEndian.PutUint32(out[risvOffStackSize:], h.StackSize)
	return out
}

// DecodeRISVHeader unpacks a 24-byte RISV executable header, verifying
// the magic number.
func DecodeRISVHeader(b []byte) (RISVHeader, error) {
	if len(b) != RISVHeaderSize {
		return RISVHeader{}, &api.SyntaxError{Message: "RISV header must be exactly 24 bytes"}
	}
	if got := binary.LittleEndian.Uint32(b[risvOffMagic:]); got != risvMagic {
		return RISVHeader{}, &api.SyntaxError{Message: "RISV header has wrong magic number"}
	}
	return RISVHeader{
		EntryOffset: binary.LittleEndian.Uint32(b[risvOffEntry:]),
		CodeSize:    binary.LittleEndian.Uint32(b[risvOffCodeSize:]),
		DataSize:    binary.LittleEndian.Uint32(b[risvOffDataSize:]),
		BssSize:     binary.LittleEndian.Uint32(b[risvOffBssSize:]),
		StackSize:   binary.LittleEndian.Uint32(b[risvOffStackSize:]),
	}, nil
}

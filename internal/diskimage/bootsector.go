package diskimage

import (
	"encoding/binary"

	"github.com/tefla/wire-hdl/api"
)

// BootSectorHeaderSize is the fixed size of a boot sector's header,
// before its payload.
const BootSectorHeaderSize = 8

var bootSectorMagic = [2]byte{'W', 'F'}

const (
	bsOffMagic       = 0
	bsOffEntry       = 2
	bsOffLoad        = 4
	bsOffSectorCount = 6
)

// BootSector is a WireFS boot sector: an 8-byte header ("WF" magic,
// entry point, load address, sector count, all little-endian) followed
// by the boot payload itself.
type BootSector struct {
	Entry       uint16
	Load        uint16
	SectorCount uint16
}

// EncodeBootSector packs bs's header followed by payload into one image.
func EncodeBootSector(bs BootSector, payload []byte) []byte {
	out := make([]byte, BootSectorHeaderSize+len(payload))
	out[bsOffMagic] = bootSectorMagic[0]
	out[bsOffMagic+1] = bootSectorMagic[1]
	binary.LittleEndian.PutUint16(out[bsOffEntry:], bs.Entry)
	binary.LittleEndian.PutUint16(out[bsOffLoad:], bs.Load)
	binary.LittleEndian.PutUint16(out[bsOffSectorCount:], bs.SectorCount)
	copy(out[BootSectorHeaderSize:], payload)
	return out
}

// DecodeBootSector splits a boot sector image into its header and
// payload, verifying the "WF" magic.
func DecodeBootSector(b []byte) (BootSector, []byte, error) {
	if len(b) < BootSectorHeaderSize {
		return BootSector{}, nil, &api.SyntaxError{Message: "boot sector image shorter than its header"}
	}
	if b[bsOffMagic] != bootSectorMagic[0] || b[bsOffMagic+1] != bootSectorMagic[1] {
		return BootSector{}, nil, &api.SyntaxError{Message: "boot sector missing \"WF\" magic"}
	}
	bs := BootSector{
		Entry:       binary.LittleEndian.Uint16(b[bsOffEntry:]),
		Load:        binary.LittleEndian.Uint16(b[bsOffLoad:]),
		SectorCount: binary.LittleEndian.Uint16(b[bsOffSectorCount:]),
	}
	return bs, b[BootSectorHeaderSize:], nil
}

// Package diskimage encodes and decodes the three file formats §6 calls
// out as "opaque to the core": WireFS directory entries, boot sector
// headers, and RISV executable headers. None of these are read or
// written by the compiler pipeline or by cmd/hdlc; the package stands
// alone and is exercised only by its own tests.
// Every format is a fixed-layout, little-endian byte encoding, following
// the teacher's own binary.LittleEndian.Put/Uint convention
// (experimental/wazerotest/wazerotest.go, imports/wasi_snapshot_preview1/fs.go)
// rather than any struct-tag or reflection-based (de)serialisation.
package diskimage

import (
	"encoding/binary"

	"github.com/tefla/wire-hdl/api"
)

// DirEntrySize is the fixed size of one WireFS directory entry.
const DirEntrySize = 32

const (
	dirOffStatus = 0
	dirOffName   = 1
	dirLenName   = 8
	dirOffExt    = 9
	dirLenExt    = 3
	dirOffAttr   = 12
	// bytes 13..25 are reserved, always zero.
	dirOffSector = 26
	dirOffSize   = 28
)

// DirStatus values a WireFS entry's status byte may hold.
const (
	DirStatusFree   byte = 0x00
	DirStatusInUse  byte = 0x01
	DirStatusDeleted byte = 0xE5
)

// DirEntry is one WireFS directory entry: an 8.3-style name, the sector
// its data starts at, its byte size, and a DOS-style attribute byte.
type DirEntry struct {
	Status byte
	Name   string // up to 8 bytes, space-padded on encode; longer is an error
	Ext    string // up to 3 bytes, space-padded on encode; longer is an error
	Attr   byte
	Sector uint16
	Size   uint32
}

// EncodeDirEntry packs e into a 32-byte WireFS directory entry.
func EncodeDirEntry(e DirEntry) ([]byte, error) {
	if len(e.Name) > dirLenName {
		return nil, &api.SyntaxError{Message: "WireFS name exceeds 8 bytes: " + e.Name}
	}
	if len(e.Ext) > dirLenExt {
		return nil, &api.SyntaxError{Message: "WireFS extension exceeds 3 bytes: " + e.Ext}
	}

	out := make([]byte, DirEntrySize)
	out[dirOffStatus] = e.Status
	copy(out[dirOffName:dirOffName+dirLenName], padSpaces(e.Name, dirLenName))
	copy(out[dirOffExt:dirOffExt+dirLenExt], padSpaces(e.Ext, dirLenExt))
	out[dirOffAttr] = e.Attr
	binary.LittleEndian.PutUint16(out[dirOffSector:], e.Sector)
	binary.LittleEndian.PutUint32(out[dirOffSize:], e.Size)
	return out, nil
}

// DecodeDirEntry unpacks a 32-byte WireFS directory entry.
func DecodeDirEntry(b []byte) (DirEntry, error) {
	if len(b) != DirEntrySize {
		return DirEntry{}, &api.SyntaxError{Message: "WireFS directory entry must be exactly 32 bytes"}
	}
	return DirEntry{
		Status: b[dirOffStatus],
		Name:   trimSpaces(b[dirOffName : dirOffName+dirLenName]),
		Ext:    trimSpaces(b[dirOffExt : dirOffExt+dirLenExt]),
		Attr:   b[dirOffAttr],
		Sector: binary.LittleEndian.Uint16(b[dirOffSector:]),
		Size:   binary.LittleEndian.Uint32(b[dirOffSize:]),
	}, nil
}

func padSpaces(s string, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	copy(out, s)
	return out
}

func trimSpaces(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end])
}

package wasmbin

import "encoding/binary"

// Buffer is a growable little-endian byte buffer the Emitter appends a
// module's bytes to. It plays the same "append to the end, grow on
// demand" role as the teacher's asm.CodeSegment/Buffer pair, minus the
// memory-mapped code segment machinery that pair needs for JIT-executable
// memory — a WASM module body is an ordinary byte slice, never executed
// in-process, so there is nothing here to mmap.
type Buffer struct {
	b []byte
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Bytes returns the buffer's contents. The returned slice is invalidated
// by the next write.
func (buf *Buffer) Bytes() []byte {
	return buf.b
}

// Len returns the number of bytes written so far.
func (buf *Buffer) Len() int {
	return len(buf.b)
}

// WriteByte appends a single byte.
func (buf *Buffer) WriteByte(b byte) {
	buf.b = append(buf.b, b)
}

// Write appends b verbatim.
func (buf *Buffer) Write(b []byte) (int, error) {
	buf.b = append(buf.b, b...)
	return len(b), nil
}

// WriteUint32 appends u as four little-endian bytes, for the WASM magic
// number and version fields (the only fixed-width encodings in the
// binary format; everything else is a LEB128 varint).
func (buf *Buffer) WriteUint32(u uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], u)
	buf.b = append(buf.b, tmp[:]...)
}

// WriteVarUint32 appends u as an unsigned LEB128 varint.
func (buf *Buffer) WriteVarUint32(u uint32) {
	buf.b = append(buf.b, EncodeUint32(u)...)
}

// WriteVarUint64 appends u as an unsigned LEB128 varint.
func (buf *Buffer) WriteVarUint64(u uint64) {
	buf.b = append(buf.b, EncodeUint64(u)...)
}

// WriteVarInt32 appends v as a signed LEB128 varint.
func (buf *Buffer) WriteVarInt32(v int32) {
	buf.b = append(buf.b, EncodeInt32(v)...)
}

// WriteVarInt64 appends v as a signed LEB128 varint.
func (buf *Buffer) WriteVarInt64(v int64) {
	buf.b = append(buf.b, EncodeInt64(v)...)
}

// WriteName appends a WASM "name" value: a varuint32 byte-length prefix
// followed by the UTF-8 bytes, used for import/export names.
func (buf *Buffer) WriteName(name string) {
	buf.WriteVarUint32(uint32(len(name)))
	buf.b = append(buf.b, name...)
}

// WriteSizedSection writes id, then the varuint32 byte length of body,
// then body itself — the size-prefixed section framing every WASM
// section shares.
func (buf *Buffer) WriteSizedSection(id byte, body []byte) {
	buf.WriteByte(id)
	buf.WriteVarUint32(uint32(len(body)))
	buf.b = append(buf.b, body...)
}

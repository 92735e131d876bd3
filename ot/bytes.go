package ot

import (
	"encoding/binary"
	"errors"

	"github.com/tdewolff/parse/v2"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// --- Byte segments ---------------------------------------------------------

// binarySegm is a segment of byte data. Tables keep a binarySegm view into
// the font's data, which has to stay unmodified while the font is in use.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

func (b binarySegm) Bytes() []byte {
	return b
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// i16 returns the int16 in b at the relative offset i.
func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// fits reports whether n bytes starting at offset lie within b.
// Computation is done in 64 bits, so offset+n cannot overflow.
func (b binarySegm) fits(offset, n uint64) bool {
	return offset <= uint64(len(b)) && n <= uint64(len(b))-offset
}

// --- Byte streams ----------------------------------------------------------

// Variation tables are read and written sequentially. We use the big-endian
// binary reader and writer of tdewolff/parse for this. A reader yields zero
// values when reading past its end and reports this with EOF(), so
// callers validate extents up front and check EOF() after a section.

// stream returns a big-endian reader over b, positioned at offset.
func (b binarySegm) stream(offset uint32) *parse.BinaryReader {
	r := parse.NewBinaryReader(b)
	r.Seek(offset)
	return r
}

func readF2Dot14(r *parse.BinaryReader) F2Dot14 {
	return F2Dot14(r.ReadInt16())
}

func readFixed(r *parse.BinaryReader) Fixed {
	return Fixed(int32(r.ReadUint32()))
}

// readUint24 reads a 3-byte big-endian value.
func readUint24(r *parse.BinaryReader) uint32 {
	hi := uint32(r.ReadUint8())
	return hi<<16 | uint32(r.ReadUint16())
}

func newStreamWriter() *parse.BinaryWriter {
	return parse.NewBinaryWriter([]byte{})
}

func writeUint24(w *parse.BinaryWriter, v uint32) {
	w.WriteUint8(uint8(v >> 16))
	w.WriteUint16(uint16(v))
}

func writeFixed(w *parse.BinaryWriter, f Fixed) {
	w.WriteUint32(uint32(f))
}

func writeF2Dot14(w *parse.BinaryWriter, f F2Dot14) {
	w.WriteInt16(int16(f))
}

// patchOffset32 overwrites a 4-byte placeholder at pos of an already written
// buffer.
func patchOffset32(b []byte, pos uint32, v uint32) {
	binary.BigEndian.PutUint32(b[pos:], v)
}

func patchOffset16(b []byte, pos uint32, v uint16) {
	binary.BigEndian.PutUint16(b[pos:], v)
}

// pad4 appends zero bytes until the length of b is a multiple of 4.
func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

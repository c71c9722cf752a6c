// Package binreader provides a positional little-endian cursor over a byte slice.
package binreader

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a read or seek goes past the end of the buffer.
var ErrTruncated = errors.New("read past end of data")

// Reader is a cursor over an in-memory buffer. All seeks are absolute.
type Reader struct {
	data []byte
	off  int
}

// New returns a Reader positioned at offset 0.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the size of the backing buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

// Pos returns the current cursor position.
func (r *Reader) Pos() uint32 {
	return uint32(r.off)
}

// Seek moves the cursor to an absolute offset. Seeking to exactly Len() is
// allowed; any later read from there fails.
func (r *Reader) Seek(off uint32) error {
	if int64(off) > int64(len(r.data)) {
		return fmt.Errorf("%w: seek to 0x%x (size 0x%x)", ErrTruncated, off, len(r.data))
	}
	r.off = int(off)
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	return r.Seek(uint32(r.off + n))
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, fmt.Errorf("%w: %d bytes at 0x%x (size 0x%x)", ErrTruncated, n, r.off, len(r.data))
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// U8 reads an unsigned byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// I16 reads a little-endian int16.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// U16At reads a uint16 at off without moving the cursor.
func (r *Reader) U16At(off uint32) (uint16, error) {
	if int64(off)+2 > int64(len(r.data)) {
		return 0, fmt.Errorf("%w: 2 bytes at 0x%x (size 0x%x)", ErrTruncated, off, len(r.data))
	}
	return binary.LittleEndian.Uint16(r.data[off:]), nil
}

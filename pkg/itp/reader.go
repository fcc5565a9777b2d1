package itp

import (
	"encoding/binary"
	"fmt"
	"io"
)

// reader is a little-endian cursor over an in-memory file. It implements
// io.Reader over its remainder so a compress.Bridge can consume frames
// in place.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("itp: %d bytes at offset %d: %w", n, r.pos, io.ErrUnexpectedEOF)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) Read(p []byte) (int, error) {
	if r.remaining() == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) fourcc() (string, error) {
	b, err := r.take(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// cstr reads a NUL-terminated byte string.
func (r *reader) cstr() (string, error) {
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			s := string(r.data[r.pos:i])
			r.pos = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("itp: unterminated string at offset %d: %w", r.pos, io.ErrUnexpectedEOF)
}

func (r *reader) checkU16(field string, want uint16) error {
	v, err := r.u16()
	if err != nil {
		return err
	}
	if v != want {
		return &InvalidError{Field: field, Value: uint32(v)}
	}
	return nil
}

func (r *reader) checkU32(field string, want uint32) error {
	v, err := r.u32()
	if err != nil {
		return err
	}
	if v != want {
		return &InvalidError{Field: field, Value: v}
	}
	return nil
}

// enum16 reads a u16 and validates it against the enum's range.
func enum16[T ~uint16](r *reader, field string, valid func(T) bool) (T, error) {
	v, err := r.u16()
	if err != nil {
		return 0, err
	}
	t := T(v)
	if !valid(t) {
		return 0, &InvalidError{Field: field, Value: uint32(v)}
	}
	return t, nil
}

func (r *reader) bool16(field string) (bool, error) {
	v, err := r.u16()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &InvalidError{Field: field, Value: uint32(v)}
	}
}

func ensureEnd(r *reader) error {
	if r.remaining() != 0 {
		return ErrRemainingData
	}
	return nil
}

func ensureSize(got, expected int) error {
	if got != expected {
		return &WrongSizeError{Expected: expected, Got: got}
	}
	return nil
}

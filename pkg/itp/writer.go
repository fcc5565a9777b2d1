package itp

import "encoding/binary"

// writer is a little-endian append buffer.
type writer struct {
	data []byte
}

func newWriter() *writer { return &writer{} }

func (w *writer) u8(v uint8)     { w.data = append(w.data, v) }
func (w *writer) u16(v uint16)   { w.data = binary.LittleEndian.AppendUint16(w.data, v) }
func (w *writer) u32(v uint32)   { w.data = binary.LittleEndian.AppendUint32(w.data, v) }
func (w *writer) raw(b []byte)   { w.data = append(w.data, b...) }
func (w *writer) str(s string)   { w.data = append(w.data, s...) }
func (w *writer) len() int       { return len(w.data) }
func (w *writer) bytes() []byte  { return w.data }

package packet

import "encoding/binary"

// Writer builds a frame payload. All multi-byte writes are little-endian.
type Writer struct {
	buf []byte
	cs  Charset
}

func NewWriter(cs Charset) *Writer {
	return &Writer{buf: make([]byte, 0, 64), cs: cs}
}

func NewWriterWithOpcode(opcode byte, cs Charset) *Writer {
	w := NewWriter(cs)
	w.WriteC(opcode)
	return w
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteH writes 2 bytes little-endian.
func (w *Writer) WriteH(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteD writes 4 bytes little-endian (signed or unsigned via cast).
func (w *Writer) WriteD(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteQ writes 8 bytes little-endian.
func (w *Writer) WriteQ(v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteS writes a null-terminated string in the writer's charset.
func (w *Writer) WriteS(s string) {
	w.buf = append(w.buf, w.cs.Encode(s)...)
	w.buf = append(w.buf, 0)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the payload padded to a 4-byte boundary.
func (w *Writer) Bytes() []byte {
	if pad := len(w.buf) % 4; pad != 0 {
		for i := pad; i < 4; i++ {
			w.buf = append(w.buf, 0)
		}
	}
	return w.buf
}

// RawBytes returns the payload without padding.
func (w *Writer) RawBytes() []byte {
	return w.buf
}

// Len returns the current unpadded length.
func (w *Writer) Len() int {
	return len(w.buf)
}

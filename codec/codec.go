/*
Package codec implements the binary layout used for every persisted model,
message and transaction.

An encoded value starts with an 8 byte little endian discriminator derived
from the type name, followed by a single version byte. The fields follow in
a fixed order, each as a protobuf varint or a varint length prefixed byte
string. There are no field tags: the order of Writer calls defines the
layout, and a Reader must consume the fields in the same order.
*/
package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/barter/errors"
)

// MaxVersion is the highest version that fits in the single version byte.
const MaxVersion = 0x7f

// Discriminator returns the 8 byte tag identifying values of the named type.
func Discriminator(name string) uint64 {
	sum := sha256.Sum256([]byte("barter:" + name))
	return binary.LittleEndian.Uint64(sum[:8])
}

// Writer serializes fields in the order the methods are called.
type Writer struct {
	buf *proto.Buffer
}

// NewWriter returns a writer that already contains the discriminator of the
// named type and the version byte.
func NewWriter(name string, version uint8) *Writer {
	if version > MaxVersion {
		panic("codec: version does not fit in one byte")
	}
	w := &Writer{buf: proto.NewBuffer(nil)}
	// Buffer encoders never fail when writing to memory.
	_ = w.buf.EncodeFixed64(Discriminator(name))
	_ = w.buf.EncodeVarint(uint64(version))
	return w
}

func (w *Writer) Uint64(v uint64) *Writer {
	_ = w.buf.EncodeVarint(v)
	return w
}

func (w *Writer) Uint8(v uint8) *Writer {
	_ = w.buf.EncodeVarint(uint64(v))
	return w
}

func (w *Writer) Int64(v int64) *Writer {
	_ = w.buf.EncodeZigzag64(uint64(v))
	return w
}

func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.Uint8(1)
	}
	return w.Uint8(0)
}

func (w *Writer) Bytes(b []byte) *Writer {
	_ = w.buf.EncodeRawBytes(b)
	return w
}

func (w *Writer) String(s string) *Writer {
	_ = w.buf.EncodeStringBytes(s)
	return w
}

// Done returns the serialized value.
func (w *Writer) Done() []byte {
	return w.buf.Bytes()
}

// Reader deserializes fields written by a Writer. The first failure is
// remembered and every following read becomes a no-op, so that the error
// can be checked once, by calling Done.
type Reader struct {
	// rest holds the bytes not read yet
	rest []byte
	err  error
}

// NewReader validates the discriminator and version of the serialized value
// and returns a reader positioned at the first field. The version read is
// returned so that callers can support older layouts.
func NewReader(raw []byte, name string, maxVersion uint8) (*Reader, uint8, error) {
	if len(raw) < 8 {
		return nil, 0, errors.Wrap(errors.ErrInput, "missing discriminator")
	}
	if binary.LittleEndian.Uint64(raw[:8]) != Discriminator(name) {
		return nil, 0, errors.Wrapf(errors.ErrType, "not a %s", name)
	}
	r := &Reader{rest: raw[8:]}
	version, ok := r.varint()
	if !ok {
		return nil, 0, errors.Wrap(errors.ErrInput, "missing version")
	}
	if version == 0 || version > uint64(maxVersion) {
		return nil, 0, errors.Wrapf(errors.ErrInput, "unsupported %s version %d", name, version)
	}
	return r, uint8(version), nil
}

// varint consumes one varint. It reports false when the value is
// truncated or overflows.
func (r *Reader) varint() (uint64, bool) {
	v, n := proto.DecodeVarint(r.rest)
	if n == 0 {
		return 0, false
	}
	r.rest = r.rest[n:]
	return v, true
}

func (r *Reader) fail(err error, field string) {
	if r.err != nil {
		return
	}
	if err == io.ErrUnexpectedEOF {
		r.err = errors.Wrapf(errors.ErrInput, "%s: truncated", field)
		return
	}
	r.err = errors.Wrapf(errors.ErrInput, "%s: %s", field, err)
}

func (r *Reader) Uint64(field string) uint64 {
	if r.err != nil {
		return 0
	}
	v, ok := r.varint()
	if !ok {
		r.fail(io.ErrUnexpectedEOF, field)
		return 0
	}
	return v
}

func (r *Reader) Uint8(field string) uint8 {
	v := r.Uint64(field)
	if v > 0xff {
		r.fail(errors.ErrOverflow, field)
		return 0
	}
	return uint8(v)
}

func (r *Reader) Int64(field string) int64 {
	v := r.Uint64(field)
	return int64(v>>1) ^ -int64(v&1)
}

func (r *Reader) Bool(field string) bool {
	switch r.Uint8(field) {
	case 0:
		return false
	case 1:
		return true
	default:
		r.fail(errors.ErrType, field)
		return false
	}
}

func (r *Reader) raw(field string) []byte {
	n := r.Uint64(field)
	if r.err != nil {
		return nil
	}
	if n > uint64(len(r.rest)) {
		r.fail(io.ErrUnexpectedEOF, field)
		return nil
	}
	b := r.rest[:n]
	r.rest = r.rest[n:]
	return b
}

// Bytes returns a copy of the next byte string. An empty string is returned
// as nil.
func (r *Reader) Bytes(field string) []byte {
	b := r.raw(field)
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}

func (r *Reader) String(field string) string {
	return string(r.raw(field))
}

// Done returns the first error encountered, or an error if the value
// contains bytes past the last field read.
func (r *Reader) Done() error {
	if r.err != nil {
		return r.err
	}
	if len(r.rest) != 0 {
		return errors.Wrapf(errors.ErrInput, "%d trailing bytes", len(r.rest))
	}
	return nil
}

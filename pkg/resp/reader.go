package resp

import (
	"errors"
	"io"
)

// DefaultReaderSize is the initial buffer size of a Reader.
const DefaultReaderSize = 4096

// Reader buffers bytes read from a stream for incremental decoding.
//
// Bytes that have been read but not yet consumed are Buffered(). Space taken
// by consumed frames is reclaimed by Fill when the tail of the buffer is
// full; if nothing was consumed the buffer doubles instead, so a frame
// larger than the buffer is always accommodated.
type Reader struct {
	rd         io.Reader
	buf        []byte
	start, end int
}

// NewReader returns a Reader over rd with an initial buffer of size bytes.
// A size below 16 uses DefaultReaderSize.
func NewReader(rd io.Reader, size int) *Reader {
	if size < 16 {
		size = DefaultReaderSize
	}
	return &Reader{rd: rd, buf: make([]byte, size)}
}

// Buffered returns the unconsumed bytes. The slice is valid until the next
// call to Fill.
func (r *Reader) Buffered() []byte {
	return r.buf[r.start:r.end]
}

// Discard marks the first n buffered bytes as consumed.
func (r *Reader) Discard(n int) {
	r.start += n
	if r.start >= r.end {
		r.start, r.end = 0, 0
	}
}

// Fill performs a single Read into the free tail of the buffer and returns
// the number of bytes added. Like io.Reader it may return data and an error
// together.
func (r *Reader) Fill() (int, error) {
	if r.end == len(r.buf) {
		if r.start > 0 {
			r.end = copy(r.buf, r.buf[r.start:r.end])
			r.start = 0
		} else {
			grown := make([]byte, 2*len(r.buf))
			copy(grown, r.buf[:r.end])
			r.buf = grown
		}
	}
	n, err := r.rd.Read(r.buf[r.end:])
	r.end += n
	return n, err
}

// ReadValue decodes the next frame with d, reading from the stream until a
// whole frame is buffered. Decode errors other than ErrIncomplete are
// returned unchanged and consume nothing. A stream that ends in the middle
// of a frame yields io.ErrUnexpectedEOF.
func (r *Reader) ReadValue(d *Decoder) (Value, error) {
	for {
		if r.start < r.end {
			v, n, err := d.Decode(r.Buffered())
			if err == nil {
				r.Discard(n)
				return v, nil
			}
			if !errors.Is(err, ErrIncomplete) {
				return Value{}, err
			}
		}

		n, err := r.Fill()
		if n > 0 {
			continue
		}
		switch {
		case err == nil:
			return Value{}, io.ErrNoProgress
		case errors.Is(err, io.EOF) && r.start < r.end:
			return Value{}, io.ErrUnexpectedEOF
		default:
			return Value{}, err
		}
	}
}

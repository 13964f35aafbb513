package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Protocol limits. The defaults match the Redis server defaults.
const (
	// DefaultMaxBulkLen limits the size of a single bulk string (512MB).
	DefaultMaxBulkLen = 512 * 1024 * 1024

	// DefaultMaxArrayLen limits the number of elements in one array.
	DefaultMaxArrayLen = 1024 * 1024

	// DefaultMaxLineLen limits simple string, error, integer and header lines.
	// A line that grows past this without a CRLF is rejected instead of
	// buffered forever.
	DefaultMaxLineLen = 64 * 1024

	// DefaultMaxDepth limits array nesting.
	DefaultMaxDepth = 32
)

var (
	// ErrIncomplete means the buffer ends before the frame does. It is not a
	// protocol error: read more bytes and decode again from the same position.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrProtocol means the bytes do not form a valid RESP frame.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrLimitExceeded means a length, count, depth or line is over the limit.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)

// Limits bounds what a Decoder accepts.
type Limits struct {
	MaxBulkLen  int
	MaxArrayLen int
	MaxLineLen  int
	MaxDepth    int
}

// DefaultLimits returns the default protocol limits.
func DefaultLimits() Limits {
	return Limits{
		MaxBulkLen:  DefaultMaxBulkLen,
		MaxArrayLen: DefaultMaxArrayLen,
		MaxLineLen:  DefaultMaxLineLen,
		MaxDepth:    DefaultMaxDepth,
	}
}

// withDefaults fills zero or negative limits with the defaults.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxBulkLen <= 0 {
		l.MaxBulkLen = d.MaxBulkLen
	}
	if l.MaxArrayLen <= 0 {
		l.MaxArrayLen = d.MaxArrayLen
	}
	if l.MaxLineLen <= 0 {
		l.MaxLineLen = d.MaxLineLen
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	return l
}

// Decoder decodes RESP frames from a byte buffer.
//
// A Decoder is stateless between calls and safe for concurrent use.
type Decoder struct {
	limits Limits
}

// NewDecoder creates a Decoder. Zero fields in limits take their defaults.
func NewDecoder(limits Limits) *Decoder {
	return &Decoder{limits: limits.withDefaults()}
}

// Limits returns the effective limits of the decoder.
func (d *Decoder) Limits() Limits {
	return d.limits
}

// Decode decodes exactly one frame starting at buf[0].
//
// On success it returns the value and the number of bytes the frame occupied.
// On any error the returned count is 0: nothing of buf is consumed, whether
// the frame was incomplete or malformed. Arrays are decoded as a whole, so an
// array whose last element has not fully arrived yields ErrIncomplete and is
// decoded again from its first byte on the next call.
//
// The returned value does not alias buf.
func (d *Decoder) Decode(buf []byte) (Value, int, error) {
	v, next, err := d.decodeAt(buf, 0, 0)
	if err != nil {
		return Value{}, 0, err
	}
	return v, next, nil
}

func (d *Decoder) decodeAt(buf []byte, pos, depth int) (Value, int, error) {
	if pos >= len(buf) {
		return Value{}, 0, ErrIncomplete
	}

	switch Type(buf[pos]) {
	case TypeSimpleString, TypeError:
		line, next, err := d.readLine(buf, pos+1)
		if err != nil {
			return Value{}, 0, err
		}
		if !utf8.Valid(line) {
			return Value{}, 0, fmt.Errorf("%w: invalid UTF-8 in %s", ErrProtocol, Type(buf[pos]))
		}
		return Value{Type: Type(buf[pos]), Str: string(line)}, next, nil

	case TypeInteger:
		line, next, err := d.readLine(buf, pos+1)
		if err != nil {
			return Value{}, 0, err
		}
		n, ok := parseDecimal(line)
		if !ok {
			return Value{}, 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
		}
		return Integer(n), next, nil

	case TypeBulkString:
		return d.decodeBulk(buf, pos)

	case TypeArray:
		return d.decodeArray(buf, pos, depth)

	default:
		return Value{}, 0, fmt.Errorf("%w: unknown type byte %q", ErrProtocol, buf[pos])
	}
}

func (d *Decoder) decodeBulk(buf []byte, pos int) (Value, int, error) {
	size, next, err := d.readLength(buf, pos+1, "bulk length")
	if err != nil {
		return Value{}, 0, err
	}
	if size < 0 {
		return NullBulk(), next, nil
	}
	if size > int64(d.limits.MaxBulkLen) {
		return Value{}, 0, fmt.Errorf("%w: bulk length %d exceeds limit %d", ErrLimitExceeded, size, d.limits.MaxBulkLen)
	}

	n := int(size)
	if len(buf)-next < n+2 {
		return Value{}, 0, ErrIncomplete
	}
	if buf[next+n] != '\r' || buf[next+n+1] != '\n' {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}

	payload := make([]byte, n)
	copy(payload, buf[next:next+n])
	return Value{Type: TypeBulkString, Bulk: payload}, next + n + 2, nil
}

func (d *Decoder) decodeArray(buf []byte, pos, depth int) (Value, int, error) {
	count, next, err := d.readLength(buf, pos+1, "array length")
	if err != nil {
		return Value{}, 0, err
	}
	if count < 0 {
		return NullArray(), next, nil
	}
	if count > int64(d.limits.MaxArrayLen) {
		return Value{}, 0, fmt.Errorf("%w: array length %d exceeds limit %d", ErrLimitExceeded, count, d.limits.MaxArrayLen)
	}
	if depth+1 > d.limits.MaxDepth {
		return Value{}, 0, fmt.Errorf("%w: nesting depth exceeds limit %d", ErrLimitExceeded, d.limits.MaxDepth)
	}

	// Do not trust count for the allocation: the elements may not have arrived.
	elems := make([]Value, 0, min(int(count), 64))
	for i := int64(0); i < count; i++ {
		elem, after, err := d.decodeAt(buf, next, depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		elems = append(elems, elem)
		next = after
	}
	return Value{Type: TypeArray, Array: elems}, next, nil
}

// readLength reads a "$<n>\r\n" or "*<n>\r\n" header body starting at pos.
func (d *Decoder) readLength(buf []byte, pos int, what string) (int64, int, error) {
	line, next, err := d.readLine(buf, pos)
	if err != nil {
		return 0, 0, err
	}
	n, ok := parseDecimal(line)
	if !ok {
		return 0, 0, fmt.Errorf("%w: invalid %s %q", ErrProtocol, what, line)
	}
	return n, next, nil
}

// parseDecimal accepts only the minimal decimal form: an optional '-' and
// digits without leading zeros. "+1", "01" and "-0" are rejected.
func parseDecimal(line []byte) (int64, bool) {
	digits := line
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if len(digits) == 0 || (digits[0] == '0' && len(line) > 1) {
		return 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	return n, err == nil
}

// readLine returns the bytes between pos and the next CRLF, and the position
// just past the CRLF.
func (d *Decoder) readLine(buf []byte, pos int) ([]byte, int, error) {
	rest := buf[pos:]
	idx := bytes.IndexByte(rest, '\n')
	if idx < 0 {
		if len(rest) > d.limits.MaxLineLen {
			return nil, 0, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, d.limits.MaxLineLen)
		}
		return nil, 0, ErrIncomplete
	}
	if idx == 0 || rest[idx-1] != '\r' {
		return nil, 0, fmt.Errorf("%w: line not terminated by CRLF", ErrProtocol)
	}

	line := rest[:idx-1]
	if len(line) > d.limits.MaxLineLen {
		return nil, 0, fmt.Errorf("%w: line length exceeds limit %d", ErrLimitExceeded, d.limits.MaxLineLen)
	}
	if bytes.IndexByte(line, '\r') >= 0 {
		return nil, 0, fmt.Errorf("%w: stray CR in line", ErrProtocol)
	}
	return line, pos + idx + 1, nil
}

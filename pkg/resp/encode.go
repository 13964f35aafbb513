package resp

import (
	"bufio"
	"strconv"
	"strings"
)

// AppendValue appends the canonical encoding of v to dst and returns the
// extended slice.
func AppendValue(dst []byte, v Value) []byte {
	switch v.Type {
	case TypeSimpleString, TypeError:
		dst = append(dst, byte(v.Type))
		dst = append(dst, sanitizeLine(v.Str)...)
		return append(dst, '\r', '\n')

	case TypeInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, '\r', '\n')

	case TypeBulkString:
		if v.Null {
			return append(dst, "$-1\r\n"...)
		}
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Bulk)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, v.Bulk...)
		return append(dst, '\r', '\n')

	case TypeArray:
		if v.Null {
			return append(dst, "*-1\r\n"...)
		}
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Array)), 10)
		dst = append(dst, '\r', '\n')
		for _, elem := range v.Array {
			dst = AppendValue(dst, elem)
		}
		return dst

	default:
		// A zero Value has no type; encode it as the nil bulk string so the
		// stream stays aligned.
		return append(dst, "$-1\r\n"...)
	}
}

// Encode returns the canonical encoding of v.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// sanitizeLine replaces CR and LF, which would end a line frame early.
func sanitizeLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, s)
}

// WriteValue writes the encoding of v to w. Bulk payloads are written
// directly rather than copied into an intermediate slice.
func WriteValue(w *bufio.Writer, v Value) error {
	switch v.Type {
	case TypeSimpleString:
		return WriteSimpleString(w, v.Str)
	case TypeError:
		return WriteError(w, v.Str)
	case TypeInteger:
		return WriteInteger(w, v.Int)
	case TypeBulkString:
		if v.Null {
			return WriteNullBulk(w)
		}
		if v.Bulk == nil {
			return WriteBulk(w, []byte{})
		}
		return WriteBulk(w, v.Bulk)
	case TypeArray:
		if v.Null {
			_, err := w.WriteString("*-1\r\n")
			return err
		}
		if err := WriteArrayHeader(w, len(v.Array)); err != nil {
			return err
		}
		for _, elem := range v.Array {
			if err := WriteValue(w, elem); err != nil {
				return err
			}
		}
		return nil
	default:
		return WriteNullBulk(w)
	}
}

// WriteCommand writes args as an array of bulk strings.
func WriteCommand(w *bufio.Writer, args ...string) error {
	if err := WriteArrayHeader(w, len(args)); err != nil {
		return err
	}
	for _, arg := range args {
		if err := writeBulkString(w, arg); err != nil {
			return err
		}
	}
	return nil
}

// WriteSimpleString writes +s\r\n.
func WriteSimpleString(w *bufio.Writer, s string) error {
	_, err := w.WriteString("+" + sanitizeLine(s) + "\r\n")
	return err
}

// WriteError writes -s\r\n.
func WriteError(w *bufio.Writer, s string) error {
	_, err := w.WriteString("-" + sanitizeLine(s) + "\r\n")
	return err
}

// WriteInteger writes :n\r\n.
func WriteInteger(w *bufio.Writer, n int64) error {
	_, err := w.WriteString(":" + strconv.FormatInt(n, 10) + "\r\n")
	return err
}

// WriteNullBulk writes $-1\r\n.
func WriteNullBulk(w *bufio.Writer) error {
	_, err := w.WriteString("$-1\r\n")
	return err
}

// WriteBulk writes b as a bulk string, or the nil bulk string if b is nil.
func WriteBulk(w *bufio.Writer, b []byte) error {
	if b == nil {
		return WriteNullBulk(w)
	}
	if _, err := w.WriteString("$" + strconv.Itoa(len(b)) + "\r\n"); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}

func writeBulkString(w *bufio.Writer, s string) error {
	if _, err := w.WriteString("$" + strconv.Itoa(len(s)) + "\r\n"); err != nil {
		return err
	}
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	_, err := w.WriteString("\r\n")
	return err
}

// WriteArrayHeader writes *n\r\n. The caller writes the n elements.
func WriteArrayHeader(w *bufio.Writer, n int) error {
	_, err := w.WriteString("*" + strconv.Itoa(n) + "\r\n")
	return err
}

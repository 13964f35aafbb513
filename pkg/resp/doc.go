// Package resp implements the RESP2 wire format used by respkv.
//
// The package is split into three parts:
//
//   - value.go: the Value model (simple string, error, integer, bulk string, array)
//   - decode.go: an incremental Decoder that works on a byte buffer plus cursor
//   - encode.go: the canonical encoder and bufio.Writer helpers
//
// The Decoder never consumes part of a frame. Decode either returns a complete
// Value together with the exact number of bytes it occupied, or it returns an
// error and consumes nothing. ErrIncomplete means the caller should read more
// bytes and retry from the same position; ErrProtocol and ErrLimitExceeded mean
// the stream is no longer aligned and cannot be resynchronised.
//
// Usage:
//
//	dec := resp.NewDecoder(resp.DefaultLimits())
//	v, n, err := dec.Decode(buf[cursor:])
//	switch {
//	case errors.Is(err, resp.ErrIncomplete):
//		// read more
//	case err != nil:
//		// drop the connection
//	default:
//		cursor += n
//		out = resp.AppendValue(out, reply(v))
//	}
package resp

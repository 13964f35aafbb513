package resp

import (
	"strconv"
	"strings"
)

// Type identifies the kind of a RESP value.
type Type byte

// RESP2 type markers. The numeric value of each Type is its wire prefix.
const (
	TypeSimpleString Type = '+'
	TypeError        Type = '-'
	TypeInteger      Type = ':'
	TypeBulkString   Type = '$'
	TypeArray        Type = '*'
)

// String returns the human readable name of the type.
func (t Type) String() string {
	switch t {
	case TypeSimpleString:
		return "simple-string"
	case TypeError:
		return "error"
	case TypeInteger:
		return "integer"
	case TypeBulkString:
		return "bulk-string"
	case TypeArray:
		return "array"
	default:
		return "unknown(" + strconv.Quote(string(rune(t))) + ")"
	}
}

// Value is a single RESP frame.
//
// Which field carries the payload depends on Type:
//   - TypeSimpleString, TypeError: Str
//   - TypeInteger: Int
//   - TypeBulkString: Bulk, or Null for the nil bulk string ($-1)
//   - TypeArray: Array, or Null for the nil array (*-1)
//
// An empty bulk string and an empty array are valid values and are not Null.
type Value struct {
	Type  Type
	Str   string
	Int   int64
	Bulk  []byte
	Array []Value
	Null  bool
}

// SimpleString returns a simple string value. s must not contain CR or LF.
func SimpleString(s string) Value {
	return Value{Type: TypeSimpleString, Str: s}
}

// Error returns an error value. s must not contain CR or LF.
func Error(s string) Value {
	return Value{Type: TypeError, Str: s}
}

// Integer returns an integer value.
func Integer(n int64) Value {
	return Value{Type: TypeInteger, Int: n}
}

// Bulk returns a bulk string value. A nil b is treated as an empty string;
// use NullBulk for the nil sentinel.
func Bulk(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Type: TypeBulkString, Bulk: b}
}

// BulkString returns a bulk string value holding s.
func BulkString(s string) Value {
	return Value{Type: TypeBulkString, Bulk: []byte(s)}
}

// NullBulk returns the nil bulk string ($-1).
func NullBulk() Value {
	return Value{Type: TypeBulkString, Null: true}
}

// Array returns an array value. A nil elems is treated as an empty array;
// use NullArray for the nil sentinel.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Type: TypeArray, Array: elems}
}

// NullArray returns the nil array (*-1).
func NullArray() Value {
	return Value{Type: TypeArray, Null: true}
}

// Command builds a command array of bulk strings, the only request shape
// accepted by the server.
func Command(args ...string) Value {
	elems := make([]Value, len(args))
	for i, a := range args {
		elems[i] = BulkString(a)
	}
	return Array(elems...)
}

// IsError reports whether v is an error reply.
func (v Value) IsError() bool {
	return v.Type == TypeError
}

// String renders v the way redis-cli prints replies.
func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb, "")
	return sb.String()
}

func (v Value) format(sb *strings.Builder, indent string) {
	switch v.Type {
	case TypeSimpleString:
		sb.WriteString(v.Str)
	case TypeError:
		sb.WriteString("(error) ")
		sb.WriteString(v.Str)
	case TypeInteger:
		sb.WriteString("(integer) ")
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case TypeBulkString:
		if v.Null {
			sb.WriteString("(nil)")
			return
		}
		sb.WriteString(strconv.Quote(string(v.Bulk)))
	case TypeArray:
		if v.Null {
			sb.WriteString("(nil)")
			return
		}
		if len(v.Array) == 0 {
			sb.WriteString("(empty array)")
			return
		}
		for i, elem := range v.Array {
			prefix := strconv.Itoa(i+1) + ") "
			if i > 0 {
				sb.WriteByte('\n')
				sb.WriteString(indent)
			}
			sb.WriteString(prefix)
			elem.format(sb, indent+strings.Repeat(" ", len(prefix)))
		}
	default:
		sb.WriteString("(unknown)")
	}
}

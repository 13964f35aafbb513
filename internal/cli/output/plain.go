package output

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// Plain converts a reply to values encoding/json and yaml.v3 can marshal:
//
//	simple string  -> string
//	error          -> {"error": message}
//	integer        -> int64
//	bulk string    -> string, or {"base64": ...} when not valid UTF-8
//	array          -> []any
//	nil bulk/array -> nil
func Plain(v resp.Value) any {
	switch v.Type {
	case resp.TypeSimpleString:
		return v.Str
	case resp.TypeError:
		return map[string]string{"error": v.Str}
	case resp.TypeInteger:
		return v.Int
	case resp.TypeBulkString:
		if v.Null {
			return nil
		}
		if utf8.Valid(v.Bulk) {
			return string(v.Bulk)
		}
		return map[string]string{"base64": base64.StdEncoding.EncodeToString(v.Bulk)}
	case resp.TypeArray:
		if v.Null {
			return nil
		}
		out := make([]any, len(v.Array))
		for i, elem := range v.Array {
			out[i] = Plain(elem)
		}
		return out
	default:
		return nil
	}
}

package output

import (
	"bytes"
	"testing"

	"github.com/yndnr/respkv-go/pkg/resp"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"table", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("json should select JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("yaml should select YAMLFormatter")
	}
	if _, ok := NewFormatter("unknown").(*TextFormatter); !ok {
		t.Error("unknown format should default to TextFormatter")
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name  string
		value resp.Value
		text  string
		json  string
		yaml  string
	}{
		{
			name:  "ok",
			value: resp.SimpleString("OK"),
			text:  "OK\n",
			json:  "\"OK\"\n",
			yaml:  "OK\n",
		},
		{
			name:  "bulk",
			value: resp.BulkString("bar"),
			text:  "\"bar\"\n",
			json:  "\"bar\"\n",
			yaml:  "bar\n",
		},
		{
			name:  "nil",
			value: resp.NullBulk(),
			text:  "(nil)\n",
			json:  "null\n",
			yaml:  "null\n",
		},
		{
			name:  "integer",
			value: resp.Integer(2),
			text:  "(integer) 2\n",
			json:  "2\n",
			yaml:  "2\n",
		},
		{
			name:  "error",
			value: resp.Error("ERR syntax error"),
			text:  "(error) ERR syntax error\n",
			json:  "{\n  \"error\": \"ERR syntax error\"\n}\n",
			yaml:  "error: ERR syntax error\n",
		},
		{
			name:  "array",
			value: resp.Array(resp.BulkString("a"), resp.Integer(1)),
			text:  "1) \"a\"\n2) (integer) 1\n",
			json:  "[\n  \"a\",\n  1\n]\n",
			yaml:  "- a\n- 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for format, want := range map[Format]string{
				FormatText: tt.text,
				FormatJSON: tt.json,
				FormatYAML: tt.yaml,
			} {
				var buf bytes.Buffer
				if err := NewFormatter(format).Format(&buf, tt.value); err != nil {
					t.Fatalf("%s: Format() error = %v", format, err)
				}
				if buf.String() != want {
					t.Errorf("%s: output = %q, want %q", format, buf.String(), want)
				}
			}
		})
	}
}

func TestPlain_BinaryBulk(t *testing.T) {
	got := Plain(resp.Bulk([]byte{0xff, 0x00}))
	m, ok := got.(map[string]string)
	if !ok {
		t.Fatalf("Plain() = %#v, want base64 map", got)
	}
	if m["base64"] != "/wA=" {
		t.Errorf("base64 = %q, want /wA=", m["base64"])
	}
}

func TestPlain_NestedNulls(t *testing.T) {
	got := Plain(resp.Array(resp.NullArray(), resp.Array()))
	list, ok := got.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("Plain() = %#v", got)
	}
	if list[0] != nil {
		t.Errorf("null array = %#v, want nil", list[0])
	}
	if inner, ok := list[1].([]any); !ok || len(inner) != 0 {
		t.Errorf("empty array = %#v, want empty slice", list[1])
	}
}

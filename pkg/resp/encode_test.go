package resp

import (
	"bufio"
	"bytes"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"simple string", SimpleString("OK"), "+OK\r\n"},
		{"error", Error("ERR syntax error"), "-ERR syntax error\r\n"},
		{"integer", Integer(3), ":3\r\n"},
		{"negative integer", Integer(-9223372036854775808), ":-9223372036854775808\r\n"},
		{"bulk", BulkString("bar"), "$3\r\nbar\r\n"},
		{"empty bulk", BulkString(""), "$0\r\n\r\n"},
		{"nil slice bulk is empty", Bulk(nil), "$0\r\n\r\n"},
		{"null bulk", NullBulk(), "$-1\r\n"},
		{"empty array", Array(), "*0\r\n"},
		{"null array", NullArray(), "*-1\r\n"},
		{"command", Command("GET", "foo"), "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"},
		{"nested", Array(Integer(1), Array(NullBulk())), "*2\r\n:1\r\n*1\r\n$-1\r\n"},
		{"zero value", Value{}, "$-1\r\n"},
		{"CRLF in simple string is replaced", SimpleString("a\r\nb"), "+a  b\r\n"},
		{"LF in error is replaced", Error("ERR a\nb"), "-ERR a b\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Encode(tt.value))
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppendValue_Appends(t *testing.T) {
	dst := []byte("prefix")
	dst = AppendValue(dst, Integer(7))
	if string(dst) != "prefix:7\r\n" {
		t.Errorf("AppendValue() = %q", dst)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"+OK\r\n",
		"+\r\n",
		"-ERR unknown command\r\n",
		":0\r\n",
		":-12345\r\n",
		":9223372036854775807\r\n",
		"$3\r\nbar\r\n",
		"$0\r\n\r\n",
		"$-1\r\n",
		"$5\r\n\x00\x01\r\n\xff\r\n",
		"*0\r\n",
		"*-1\r\n",
		"*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n",
		"*2\r\n*0\r\n*2\r\n*-1\r\n$-1\r\n",
		"*4\r\n+a\r\n-b\r\n:1\r\n$1\r\nc\r\n",
	}

	dec := NewDecoder(DefaultLimits())
	for _, in := range inputs {
		v, n, err := dec.Decode([]byte(in))
		if err != nil {
			t.Errorf("Decode(%q) error = %v", in, err)
			continue
		}
		if n != len(in) {
			t.Errorf("Decode(%q) consumed %d, want %d", in, n, len(in))
		}
		if out := string(Encode(v)); out != in {
			t.Errorf("Encode(Decode(%q)) = %q", in, out)
		}
	}
}

// ============================================================
// bufio.Writer helpers
// ============================================================

func TestWriteHelpers(t *testing.T) {
	var out bytes.Buffer
	w := bufio.NewWriter(&out)

	steps := []func() error{
		func() error { return WriteSimpleString(w, "OK") },
		func() error { return WriteError(w, "ERR x") },
		func() error { return WriteInteger(w, -1) },
		func() error { return WriteBulk(w, []byte("v")) },
		func() error { return WriteBulk(w, nil) },
		func() error { return WriteNullBulk(w) },
		func() error { return WriteArrayHeader(w, 2) },
		func() error { return WriteValue(w, Command("GET", "k")) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := "+OK\r\n-ERR x\r\n:-1\r\n$1\r\nv\r\n$-1\r\n$-1\r\n*2\r\n*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestWriteValue_MatchesEncode(t *testing.T) {
	values := []Value{
		SimpleString("OK"),
		Error("ERR a\r\nb"),
		Integer(-7),
		BulkString("bar"),
		Bulk(nil),
		NullBulk(),
		Array(),
		NullArray(),
		Value{},
		Array(Command("SET", "k", "v"), NullBulk(), Integer(1)),
		Bulk(bytes.Repeat([]byte{0, 'x'}, 8192)),
	}

	for _, v := range values {
		var out bytes.Buffer
		w := bufio.NewWriterSize(&out, 16)
		if err := WriteValue(w, v); err != nil {
			t.Fatalf("WriteValue(%s): %v", v.Type, err)
		}
		if err := w.Flush(); err != nil {
			t.Fatal(err)
		}
		if want := Encode(v); !bytes.Equal(out.Bytes(), want) {
			t.Errorf("WriteValue(%s) = %q, want %q", v.Type, out.Bytes(), want)
		}
	}
}

func TestWriteCommand(t *testing.T) {
	var out bytes.Buffer
	w := bufio.NewWriter(&out)
	if err := WriteCommand(w, "SET", "k", ""); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if want := string(Encode(Command("SET", "k", ""))); out.String() != want {
		t.Errorf("WriteCommand = %q, want %q", out.String(), want)
	}
}

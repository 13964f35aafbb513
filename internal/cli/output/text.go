package output

import (
	"fmt"
	"io"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// TextFormatter prints replies the way redis-cli does.
type TextFormatter struct{}

// Format writes the human form of v followed by a newline.
func (f *TextFormatter) Format(w io.Writer, v resp.Value) error {
	_, err := fmt.Fprintln(w, v.String())
	return err
}

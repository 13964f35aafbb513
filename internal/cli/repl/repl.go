package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yndnr/respkv-go/internal/cli/output"
	"github.com/yndnr/respkv-go/pkg/resp"
)

// Executor sends one command to the server.
type Executor interface {
	Do(ctx context.Context, args ...string) (resp.Value, error)
	Addr() string
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	exec      Executor
	formatter output.Formatter
	input     io.Reader
	output    io.Writer
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a new REPL instance.
func New(exec Executor, formatter output.Formatter, opts ...Option) *REPL {
	r := &REPL{
		exec:      exec,
		formatter: formatter,
		input:     os.Stdin,
		output:    os.Stdout,
		completer: NewCompleter(),
		history:   NewHistory(""),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the REPL loop. It returns nil on exit, quit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		fmt.Fprintf(r.output, "%s> ", r.exec.Addr())

		raw, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if err != nil && raw == "" {
			fmt.Fprintln(r.output)
			return nil
		}

		raw = strings.TrimRight(raw, "\r\n")
		if strings.HasSuffix(raw, "\t") {
			r.printCompletions(strings.TrimSpace(raw))
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}
		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "Error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	args, err := SplitArgs(line)
	if err != nil {
		return err
	}

	switch strings.ToLower(args[0]) {
	case "help":
		prefix := ""
		if len(args) > 1 {
			prefix = args[1]
		}
		r.printCompletions(prefix)
		return nil
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return nil
	}

	v, err := r.exec.Do(ctx, args...)
	if err != nil {
		return err
	}
	return r.formatter.Format(r.output, v)
}

func (r *REPL) printCompletions(prefix string) {
	for _, s := range r.completer.Complete(prefix) {
		fmt.Fprintln(r.output, s)
	}
}

// SplitArgs splits a command line into arguments. Double-quoted arguments
// understand \n, \r, \t, \\, \" and \xHH escapes; single-quoted arguments
// are literal except for \'.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inArg   bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == ' ' || ch == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}

		case ch == '"':
			end, err := readDoubleQuoted(line, i+1, &current)
			if err != nil {
				return nil, err
			}
			i = end
			inArg = true

		case ch == '\'':
			end, err := readSingleQuoted(line, i+1, &current)
			if err != nil {
				return nil, err
			}
			i = end
			inArg = true

		default:
			current.WriteByte(ch)
			inArg = true
		}
	}
	if inArg {
		args = append(args, current.String())
	}
	if len(args) == 0 {
		return nil, errors.New("empty command")
	}
	return args, nil
}

// readDoubleQuoted reads from just after the opening quote and returns the
// index of the closing quote.
func readDoubleQuoted(line string, i int, b *strings.Builder) (int, error) {
	for ; i < len(line); i++ {
		ch := line[i]
		if ch == '"' {
			return i, nil
		}
		if ch != '\\' || i+1 >= len(line) {
			b.WriteByte(ch)
			continue
		}

		i++
		switch line[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'x':
			if i+2 < len(line) {
				if n, err := strconv.ParseUint(line[i+1:i+3], 16, 8); err == nil {
					b.WriteByte(byte(n))
					i += 2
					continue
				}
			}
			b.WriteByte('x')
		default:
			b.WriteByte(line[i])
		}
	}
	return 0, errors.New("unbalanced quotes")
}

func readSingleQuoted(line string, i int, b *strings.Builder) (int, error) {
	for ; i < len(line); i++ {
		ch := line[i]
		if ch == '\'' {
			return i, nil
		}
		if ch == '\\' && i+1 < len(line) && line[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		b.WriteByte(ch)
	}
	return 0, errors.New("unbalanced quotes")
}

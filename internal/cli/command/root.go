package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/cli/connection"
	"github.com/yndnr/respkv-go/internal/cli/output"
	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
	"github.com/yndnr/respkv-go/pkg/resp"
)

// DefaultServer is the default server address.
const DefaultServer = "127.0.0.1:6379"

// ErrErrorReply is returned when the server answers with an error reply.
var ErrErrorReply = errors.New("server returned an error")

// App creates the CLI application.
func App() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, buildinfo.String(c.App.Name))
	}

	return &cli.App{
		Name:    "respkv-cli",
		Usage:   "Command-line client for respkv-server",
		Version: buildinfo.Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			DelCommand(),
			FlushAllCommand(),
			ExecCommand(),
			REPLCommand(),
		},
		Before: func(c *cli.Context) error {
			if _, err := output.ParseFormat(c.String("output")); err != nil {
				return err
			}
			c.App.Metadata["connMgr"] = connection.NewManager(c.String("server"), c.Duration("timeout"))
			return nil
		},
		After: func(c *cli.Context) error {
			if mgr := GetConnectionManager(c); mgr != nil {
				mgr.Disconnect()
			}
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "respkv server address",
			EnvVars: []string{"RESPKV_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml",
			Value:   string(output.FormatText),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Dial and request timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	return &GlobalFlags{
		Server:  c.String("server"),
		Output:  format,
		Timeout: c.Duration("timeout"),
	}
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	if mgr, ok := c.App.Metadata["connMgr"].(*connection.Manager); ok {
		return mgr
	}
	return nil
}

// EnsureConnected returns the connection manager, creating one from the
// global flags when Before did not run.
func EnsureConnected(c *cli.Context) *connection.Manager {
	if mgr := GetConnectionManager(c); mgr != nil {
		return mgr
	}
	flags := ParseGlobalFlags(c)
	mgr := connection.NewManager(flags.Server, flags.Timeout)
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata["connMgr"] = mgr
	return mgr
}

// runCommand sends args, prints the reply and reports error replies.
func runCommand(c *cli.Context, args ...string) error {
	mgr := EnsureConnected(c)

	v, err := mgr.Do(context.Background(), args...)
	if err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if err := output.NewFormatter(flags.Output).Format(c.App.Writer, v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if v.Type == resp.TypeError {
		return ErrErrorReply
	}
	return nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

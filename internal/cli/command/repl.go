package command

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/cli/output"
	"github.com/yndnr/respkv-go/internal/cli/repl"
)

// REPLCommand returns the interactive mode command.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Start an interactive session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history-file",
				Usage: "History file (empty disables persistence)",
				Value: repl.DefaultHistoryFile(),
			},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
			defer stop()

			flags := ParseGlobalFlags(c)
			r := repl.New(EnsureConnected(c), output.NewFormatter(flags.Output),
				repl.WithIO(c.App.Reader, c.App.Writer),
				repl.WithHistory(repl.NewHistory(c.String("history-file"))),
			)
			return r.Run(ctx)
		},
	}
}

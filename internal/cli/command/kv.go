package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if err := exactArgs(c, 1); err != nil {
				return err
			}
			return runCommand(c, "GET", c.Args().First())
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key to a value",
		ArgsUsage: "KEY VALUE",
		Action: func(c *cli.Context) error {
			if err := exactArgs(c, 2); err != nil {
				return err
			}
			return runCommand(c, "SET", c.Args().Get(0), c.Args().Get(1))
		},
	}
}

// DelCommand returns the del command.
func DelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Usage:     "Delete keys and print how many existed",
		ArgsUsage: "KEY [KEY...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("del: at least one key is required")
			}
			return runCommand(c, append([]string{"DEL"}, c.Args().Slice()...)...)
		},
	}
}

// FlushAllCommand returns the flushall command.
func FlushAllCommand() *cli.Command {
	return &cli.Command{
		Name:  "flushall",
		Usage: "Remove every key",
		Action: func(c *cli.Context) error {
			if err := exactArgs(c, 0); err != nil {
				return err
			}
			return runCommand(c, "FLUSHALL")
		},
	}
}

// ExecCommand returns the exec command, which sends its arguments verbatim.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Send an arbitrary command",
		ArgsUsage: "COMMAND [ARG...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("exec: a command is required")
			}
			return runCommand(c, c.Args().Slice()...)
		},
	}
}

func exactArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", c.Command.Name, n, c.NArg())
	}
	return nil
}

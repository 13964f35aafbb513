// Package command provides CLI command definitions for respkv-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command and global flags
//   - kv.go: get, set, del, flushall and exec
//   - repl.go: interactive mode
//
// Commands send one RESP command, print the reply with the selected
// formatter and fail when the server answers with an error.
package command

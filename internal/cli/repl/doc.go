// Package repl provides the interactive mode of respkv-cli.
//
//   - repl.go: the read-eval-print loop and argument splitting
//   - completer.go: command name completion
//   - history.go: command history persistence
//
// Inside the loop, "help [prefix]" lists commands, "history" prints past
// input and a line ending in a tab lists completions for the word typed.
package repl

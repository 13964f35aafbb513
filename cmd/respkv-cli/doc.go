// Package main provides the entry point for respkv-cli.
//
// The CLI sends commands to a respkv server:
//
//	respkv-cli set foo bar
//	respkv-cli get foo
//	respkv-cli -o json del foo bar
//	respkv-cli exec FLUSHALL
//	respkv-cli -s 10.0.0.5:6379 repl
//
// The CLI supports both single-command mode and interactive REPL mode.
package main

// Package main provides the entry point for respkv-server.
//
// The server provides:
//
//   - A RESP2 TCP listener answering GET, SET, DEL and FLUSHALL
//   - An optional admin HTTP endpoint with health checks and metrics
//
// Usage:
//
//	respkv-server [flags]
//	respkv-server --config /path/to/config.yaml
//	respkv-server --addr 127.0.0.1:6380 --log-level debug
//
// Configuration is read from defaults, the YAML file, RESPKV_* environment
// variables and flags, in that order. Changing log.level in the file takes
// effect without a restart.
package main

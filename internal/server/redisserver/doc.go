// Package redisserver provides a Redis protocol compatible server for respkv.
//
// This package implements the RESP2 request/reply cycle on top of pkg/resp
// and the in-memory store:
//
//   - server.go: TCP listener, per-connection loop and graceful shutdown
//   - conn.go: client connection with its growable read buffer
//   - command.go: command dispatch and argument validation
//
// Supported commands:
//   - GET, SET, DEL, FLUSHALL
//   - COMMAND (compatibility stub, replies +OK)
//
// Requests must be arrays of bulk strings. Inline commands are not supported.
// A frame that cannot be decoded ends the connection after a protocol error
// reply, since the byte stream can no longer be realigned.
package redisserver

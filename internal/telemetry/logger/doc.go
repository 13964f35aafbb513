// Package logger provides structured logging for respkv.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, configuration and the global default
//   - context.go: context propagation of the logger and connection id
//   - redact.go: masking of stored payloads and truncation of keys
//
// Features:
//
//   - JSON (default) and text output formats
//   - Log level filtering, adjustable at runtime via SetLevel
//   - Automatic redaction of value/payload attributes
//   - Per-connection loggers carrying conn_id
package logger

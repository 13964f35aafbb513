// Package buildinfo provides build information for respkv.
//
// This package exposes build-time information injected via ldflags:
//
//   - Version: Semantic version (e.g., "1.0.0")
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//
// When a value is not injected it is taken from the VCS stamp the Go
// toolchain embeds in the binary, if present.
//
// Usage:
//
//	go build -ldflags "-X github.com/yndnr/respkv-go/internal/infra/buildinfo.Version=v1.0.0"
package buildinfo

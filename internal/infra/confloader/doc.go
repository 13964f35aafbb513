// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, flag maps
//   - Watch Support: change notification for config files via fsnotify
//   - Type Safety: Unmarshaling into typed structs
//   - Defaults: fields already set on the target survive unless overridden
//
// Priority (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration files
//  4. Default values
package confloader

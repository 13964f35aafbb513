// Package output formats server replies for respkv-cli.
//
//   - formatter.go: Formatter interface and factory
//   - text.go: redis-cli style text
//   - json.go, yaml.go: machine-readable output for scripting
//   - plain.go: conversion of replies to plain Go values
package output

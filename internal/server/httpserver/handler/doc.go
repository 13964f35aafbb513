// Package handler provides the admin HTTP handlers for respkv.
package handler

// Package memory provides the in-memory key-value store for respkv.
//
// The store maps binary-safe keys to binary-safe values. It is created once
// at startup, shared by every client connection, and discarded at exit.
//
// Thread Safety:
//
// A single mutex guards the map. Every operation holds it for exactly one
// map operation and releases it before returning, so no caller can hold the
// lock across socket I/O. DEL over several keys takes the lock once per key.
package memory

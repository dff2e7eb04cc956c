// Package memory provides in-memory implementations of the local store ports.
// They mirror the SQLite adapter's semantics without durability and are used
// by tests and by the --ephemeral global flag.
package memory

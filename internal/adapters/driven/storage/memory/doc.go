// Package memory provides in-memory implementations of the storage ports,
// used by tests and by runs that must leave no state behind.
package memory

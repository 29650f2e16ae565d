// Package driving defines the interfaces the outside world calls INTO core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI depends on these interfaces and core services implement them.
package driving

// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based harvest configuration
//
// A configuration file looks like:
//
//	[harvest]
//	workers = 4
//
//	[confluence]
//	max_contents = 200
//	add_ancestors = true
//
//	[transport]
//	rate = 5.0
//	max_in_flight = 4
//	timeout = 30
package file

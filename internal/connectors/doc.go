// Package connectors provides the harvester implementations for the
// supported remote platforms, plus the helpers they share to build
// envelopes, join server URLs and parse server timestamps.
//
// Each backend lives in its own subpackage and implements [driven.Harvester].
package connectors

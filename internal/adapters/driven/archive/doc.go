// Package archive provides Transport decorators that record raw responses
// into an Archive and replay them later without network access.
//
// Only responses that reached the server are recorded: bodies and error
// statuses. A replayed harvest therefore takes the same decisions as the
// recorded one, including where item walks stop.
package archive

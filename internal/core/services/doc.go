// Package services implements the driving port interfaces.
// Services hold the harvest run logic and reach infrastructure only
// through driven ports.
package services

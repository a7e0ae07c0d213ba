// Package process holds platform-specific helpers for managing the
// document converter subprocesses.
package process

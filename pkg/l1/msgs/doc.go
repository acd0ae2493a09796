// Package msgs defines the status messages a terminal publishes.
package msgs

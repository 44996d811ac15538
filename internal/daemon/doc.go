// Package daemon runs scheduled sync passes under a single-instance lock
// and exposes daemon state over a local HTTP API.
package daemon

// Package recording models superwhisper sessions and scans the local
// recordings directory for archive candidates.
package recording

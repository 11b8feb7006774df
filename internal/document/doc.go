// Package document renders recordings as markdown archive documents and
// computes their canonical storage paths.
package document

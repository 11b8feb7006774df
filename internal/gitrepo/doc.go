// Package gitrepo writes archive documents into a git repository and drives
// the git CLI for commit and publish operations.
package gitrepo

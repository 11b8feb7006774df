package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Committer is the behaviour the archival orchestrator requires from the
// version-controlled archive tree.
type Committer interface {
	// EnsureSynced brings the working copy to the tip of the configured
	// branch. Callers treat failures as non-fatal so offline runs can still
	// commit locally.
	EnsureSynced(ctx context.Context) error
	// WriteAndCommit persists content at the relative path, stages it, and
	// creates exactly one commit. It returns the commit identifier; without
	// one the caller must not mark the item archived.
	WriteAndCommit(ctx context.Context, relPath, content, message string) (string, error)
	// Push publishes all pending local commits to the remote, once per run.
	Push(ctx context.Context) error
}

// Executor abstracts git command execution for testability.
type Executor interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithBinary overrides the git executable name.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if strings.TrimSpace(binary) != "" {
			c.binary = strings.TrimSpace(binary)
		}
	}
}

// Client drives a local git repository through the git CLI.
type Client struct {
	repoDir string
	remote  string
	branch  string
	binary  string
	exec    Executor
}

// New constructs a client for an existing repository. A missing directory or
// one that is not a git work tree is a fatal setup error.
func New(repoDir, remote, branch string, opts ...Option) (*Client, error) {
	repoDir = strings.TrimSpace(repoDir)
	if repoDir == "" {
		return nil, errors.New("repository path required")
	}
	info, err := os.Stat(repoDir)
	if err != nil {
		return nil, fmt.Errorf("repository path does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository path %q is not a directory", repoDir)
	}
	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err != nil {
		return nil, fmt.Errorf("not a git repository at %s: %w", repoDir, err)
	}

	client := &Client{
		repoDir: repoDir,
		remote:  remote,
		branch:  branch,
		binary:  "git",
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// EnsureSynced checks out the configured branch if needed and pulls the
// remote tip.
func (c *Client) EnsureSynced(ctx context.Context) error {
	current, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return fmt.Errorf("determine current branch: %w", err)
	}
	if strings.TrimSpace(current) != c.branch {
		if _, err := c.run(ctx, "checkout", c.branch); err != nil {
			return fmt.Errorf("checkout %s: %w", c.branch, err)
		}
	}
	if _, err := c.run(ctx, "pull", c.remote, c.branch); err != nil {
		return fmt.Errorf("pull %s/%s: %w", c.remote, c.branch, err)
	}
	return nil
}

// WriteAndCommit writes the document, stages it, and commits it. Partial
// writes are not rolled back on failure; callers rely on the returned
// identifier, not on filesystem state.
func (c *Client) WriteAndCommit(ctx context.Context, relPath, content, message string) (string, error) {
	if strings.TrimSpace(relPath) == "" {
		return "", errors.New("relative path required")
	}
	fullPath := filepath.Join(c.repoDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create document directory: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	if _, err := c.run(ctx, "add", relPath); err != nil {
		return "", fmt.Errorf("stage %s: %w", relPath, err)
	}
	if _, err := c.run(ctx, "commit", "-m", message); err != nil {
		return "", fmt.Errorf("commit %s: %w", relPath, err)
	}
	sha, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve commit id: %w", err)
	}
	return strings.TrimSpace(sha), nil
}

// Push publishes pending commits to the configured remote.
func (c *Client) Push(ctx context.Context) error {
	if _, err := c.run(ctx, "push", c.remote, c.branch); err != nil {
		return fmt.Errorf("push %s/%s: %w", c.remote, c.branch, err)
	}
	return nil
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	return c.exec.Run(ctx, c.repoDir, append([]string{c.binary}, args...)...)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, dir string, args ...string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("no command provided")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(output))
		if trimmed != "" {
			return "", fmt.Errorf("%s: %w: %s", args[0], err, firstLine(trimmed))
		}
		return "", fmt.Errorf("%s: %w", args[0], err)
	}
	return string(output), nil
}

func firstLine(value string) string {
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		return value[:idx]
	}
	return value
}

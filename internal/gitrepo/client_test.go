package gitrepo_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whisperarc/internal/gitrepo"
)

type fakeExecutor struct {
	calls     [][]string
	responses map[string]string
	failOn    string
}

func (f *fakeExecutor) Run(_ context.Context, dir string, args ...string) (string, error) {
	key := strings.Join(args[1:], " ")
	f.calls = append(f.calls, args[1:])
	if f.failOn != "" && strings.HasPrefix(key, f.failOn) {
		return "", fmt.Errorf("git: exit status 1")
	}
	if out, ok := f.responses[key]; ok {
		return out, nil
	}
	return "", nil
}

func (f *fakeExecutor) call(i int) string {
	if i >= len(f.calls) {
		return ""
	}
	return strings.Join(f.calls[i], " ")
}

func newRepoDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	return dir
}

func newClient(t *testing.T, dir string, exec *fakeExecutor) *gitrepo.Client {
	t.Helper()
	client, err := gitrepo.New(dir, "origin", "main", gitrepo.WithExecutor(exec))
	if err != nil {
		t.Fatalf("gitrepo.New: %v", err)
	}
	return client
}

func TestNewRejectsMissingRepository(t *testing.T) {
	if _, err := gitrepo.New(filepath.Join(t.TempDir(), "absent"), "origin", "main"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestNewRejectsNonGitDirectory(t *testing.T) {
	if _, err := gitrepo.New(t.TempDir(), "origin", "main"); err == nil {
		t.Fatal("expected error for directory without .git")
	}
}

func TestEnsureSyncedPullsConfiguredBranch(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{
		"rev-parse --abbrev-ref HEAD": "main\n",
	}}
	client := newClient(t, newRepoDir(t), exec)

	if err := client.EnsureSynced(context.Background()); err != nil {
		t.Fatalf("EnsureSynced: %v", err)
	}
	if exec.call(0) != "rev-parse --abbrev-ref HEAD" || exec.call(1) != "pull origin main" {
		t.Fatalf("unexpected command sequence: %v", exec.calls)
	}
}

func TestEnsureSyncedChecksOutWhenOnOtherBranch(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]string{
		"rev-parse --abbrev-ref HEAD": "feature\n",
	}}
	client := newClient(t, newRepoDir(t), exec)

	if err := client.EnsureSynced(context.Background()); err != nil {
		t.Fatalf("EnsureSynced: %v", err)
	}
	if exec.call(1) != "checkout main" || exec.call(2) != "pull origin main" {
		t.Fatalf("unexpected command sequence: %v", exec.calls)
	}
}

func TestWriteAndCommitWritesFileAndReturnsSHA(t *testing.T) {
	dir := newRepoDir(t)
	exec := &fakeExecutor{responses: map[string]string{
		"rev-parse HEAD": "abc123def456\n",
	}}
	client := newClient(t, dir, exec)

	sha, err := client.WriteAndCommit(context.Background(),
		"2026/02/2026-02-13-10-31-50.md", "# doc\n", "Archive: meeting recording")
	if err != nil {
		t.Fatalf("WriteAndCommit: %v", err)
	}
	if sha != "abc123def456" {
		t.Fatalf("unexpected sha %q", sha)
	}

	content, err := os.ReadFile(filepath.Join(dir, "2026/02/2026-02-13-10-31-50.md"))
	if err != nil {
		t.Fatalf("read written document: %v", err)
	}
	if string(content) != "# doc\n" {
		t.Fatalf("unexpected document content %q", content)
	}

	if exec.call(0) != "add 2026/02/2026-02-13-10-31-50.md" {
		t.Fatalf("expected add first, got %v", exec.calls)
	}
	if !strings.HasPrefix(exec.call(1), "commit -m") {
		t.Fatalf("expected commit second, got %v", exec.calls)
	}
	if exec.call(2) != "rev-parse HEAD" {
		t.Fatalf("expected rev-parse last, got %v", exec.calls)
	}
}

func TestWriteAndCommitFailureReturnsNoSHA(t *testing.T) {
	exec := &fakeExecutor{failOn: "commit"}
	client := newClient(t, newRepoDir(t), exec)

	sha, err := client.WriteAndCommit(context.Background(), "a/b.md", "x", "msg")
	if err == nil {
		t.Fatal("expected commit failure")
	}
	if sha != "" {
		t.Fatalf("expected empty sha on failure, got %q", sha)
	}
}

func TestWriteAndCommitRequiresPath(t *testing.T) {
	client := newClient(t, newRepoDir(t), &fakeExecutor{})
	if _, err := client.WriteAndCommit(context.Background(), "  ", "x", "msg"); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPush(t *testing.T) {
	exec := &fakeExecutor{}
	client := newClient(t, newRepoDir(t), exec)

	if err := client.Push(context.Background()); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if exec.call(0) != "push origin main" {
		t.Fatalf("unexpected push call: %v", exec.calls)
	}
}

func TestPushFailureSurfacesError(t *testing.T) {
	exec := &fakeExecutor{failOn: "push"}
	client := newClient(t, newRepoDir(t), exec)

	err := client.Push(context.Background())
	if err == nil {
		t.Fatal("expected push failure")
	}
	if !strings.Contains(err.Error(), "push origin/main") {
		t.Fatalf("unexpected error: %v", err)
	}
}

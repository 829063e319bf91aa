package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Git is the production Repo implementation: every operation is fulfilled by
// invoking the "git" binary as a subprocess against the repository rooted at
// Root, in the style of the teacher corpus's own exec.Command("git", ...)
// wrapper (other_examples' grailbio-grit Repo.git/Repo.gitIO): arguments are
// passed through, stdin is plumbed when given, and stderr is folded into the
// returned error.
type Git struct {
	// Root is the repository's working directory, passed to every
	// invocation via "-C".
	Root string
}

// NewGit returns a Git rooted at root.
func NewGit(root string) *Git {
	return &Git{Root: root}
}

func (g *Git) run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	allArgs := append([]string{"-C", g.Root}, args...)
	cmd := exec.CommandContext(ctx, "git", allArgs...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return out.Bytes(), nil
}

// ApplyPatch implements Index by invoking "git apply --index" against the
// patch file at path, matching spec.md §4.6 step 6's external applicator
// contract exactly.
func (g *Git) ApplyPatch(ctx context.Context, path string) error {
	_, err := g.run(ctx, nil, "apply", "--index", path)
	return err
}

// WriteTree implements TreeWriter via "git write-tree".
func (g *Git) WriteTree(ctx context.Context) (string, error) {
	out, err := g.run(ctx, nil, "write-tree")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ResolveHead implements CommitWriter's HEAD lookup via "git rev-parse
// --verify HEAD". A non-zero exit (no such ref) is reported as ok=false
// rather than an error, since an empty history is an expected state per
// spec.md §4.6 step 7.
func (g *Git) ResolveHead(ctx context.Context) (string, bool, error) {
	out, err := g.run(ctx, nil, "rev-parse", "--verify", "--quiet", "HEAD")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(string(out)), true, nil
}

// WriteCommit implements CommitWriter via "git commit-tree".
func (g *Git) WriteCommit(ctx context.Context, c CommitSpec) (string, error) {
	args := []string{"commit-tree", c.Tree}
	for _, p := range c.Parents {
		args = append(args, "-p", p)
	}

	env := []string{
		"GIT_AUTHOR_NAME=" + c.Author.Name,
		"GIT_AUTHOR_EMAIL=" + c.Author.Email,
		"GIT_AUTHOR_DATE=" + formatCommitDate(c.Date),
		"GIT_COMMITTER_NAME=" + c.Author.Name,
		"GIT_COMMITTER_EMAIL=" + c.Author.Email,
		"GIT_COMMITTER_DATE=" + formatCommitDate(c.Date),
	}

	allArgs := append([]string{"-C", g.Root}, args...)
	cmd := exec.CommandContext(ctx, "git", allArgs...)
	cmd.Stdin = bytes.NewReader([]byte(c.Message))
	cmd.Env = append(cmd.Environ(), env...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("git commit-tree: %w: %s", err, msg)
		}
		return "", fmt.Errorf("git commit-tree: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

// UpdateHead implements RefUpdater via "git update-ref -m <reflogMessage>
// HEAD <newOID>".
func (g *Git) UpdateHead(ctx context.Context, newOID, reflogMessage string) error {
	_, err := g.run(ctx, nil, "update-ref", "-m", reflogMessage, "HEAD", newOID)
	return err
}

func formatCommitDate(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Unix(), t.Format("-0700"))
}

var _ Repo = (*Git)(nil)

// Package vcs abstracts the version-control plumbing operations the
// Apply/Commit Driver needs: reading and writing the index, writing trees
// and commit objects, and moving refs. spec.md §9's design notes ask for the
// three external subprocess tools (splitter, parser, applicator) to sit
// behind capability interfaces so tests can substitute in-process fakes;
// this package plays that role for everything downstream of the Patch
// Parser — the apply step itself, and the commit it produces.
//
// The production implementation shells out to git plumbing commands, the
// same way the teacher's own patch/vcs-adjacent code in this corpus does it:
// other_examples' grailbio-grit Repo.git/Repo.gitIO pattern (exec.Command,
// stderr captured into the returned error) is the template for Git.run.
package vcs

import (
	"context"
	"time"

	"github.com/bkeyes/gitam/patch"
)

// Index applies a patch file to the repository's index, mirroring spec.md
// §4.6 step 6's external applicator invocation "(apply, --index,
// <patch-path>)".
type Index interface {
	// ApplyPatch applies the patch file at path to the index in place. A
	// non-nil error means the apply failed (conflicted or malformed); the
	// caller is responsible for the exit-128 / session-retained behavior
	// spec.md §4.6 step 6 describes.
	ApplyPatch(ctx context.Context, path string) error
}

// TreeWriter writes the current index content as a tree object and returns
// its object ID, per spec.md §4.6 step 7's "write a tree from the index".
type TreeWriter interface {
	WriteTree(ctx context.Context) (oid string, err error)
}

// CommitWriter resolves the current HEAD commit (if any) and writes a new
// commit object, per spec.md §4.6 step 7.
type CommitWriter interface {
	// ResolveHead returns the OID of the current HEAD commit and true, or
	// ("", false, nil) if HEAD cannot be resolved — the "applying to an
	// empty history" case, which proceeds with no parents rather than
	// failing.
	ResolveHead(ctx context.Context) (oid string, ok bool, err error)

	// WriteCommit creates a commit object with the given tree, parents (may
	// be empty), author/committer identity, timestamp, and message, and
	// returns its OID.
	WriteCommit(ctx context.Context, c CommitSpec) (oid string, err error)
}

// CommitSpec is the input to WriteCommit.
type CommitSpec struct {
	Tree      string
	Parents   []string
	Author    patch.Identity
	Date      time.Time
	Message   string
}

// RefUpdater moves HEAD to a new commit, recording a reflog entry, per
// spec.md §4.6 step 7's final action. A failure here must fail the whole
// process (spec.md: "the update must fail the whole process if it cannot
// complete").
type RefUpdater interface {
	UpdateHead(ctx context.Context, newOID, reflogMessage string) error
}

// Repo is the full capability set the driver needs, satisfied in production
// by Git (git.go) and in tests by an in-memory fake.
type Repo interface {
	Index
	TreeWriter
	CommitWriter
	RefUpdater
}

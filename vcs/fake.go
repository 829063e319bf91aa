package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/bkeyes/gitam/patch"
)

// Fake is an in-memory Repo used by driver and controller tests, following
// spec.md §9's guidance to substitute in-process fakes for the external
// subprocess tools. Unlike a bare recorder, ApplyPatch actually parses the
// patch file with patch.Parse and applies each file's fragments with
// patch.File.ApplyStrict against an in-memory content map, the way the real
// "git apply --index" mutates the index — so patch conflicts and malformed
// fragments surface as ApplyPatch errors here exactly as they would in
// production, instead of being rubber-stamped by the fake.
type Fake struct {
	// ApplyErr, if set, is returned by every ApplyPatch call not overridden
	// by FailOn, instead of actually parsing and applying the patch.
	ApplyErr error
	// FailOn, if set, returns a specific error for ApplyPatch calls against
	// the given path, letting tests fail one patch in a series without
	// failing the rest.
	FailOn map[string]error
	// Applied records the paths passed to ApplyPatch, in order.
	Applied []string

	// Files is the in-memory index content, keyed by path. ApplyPatch reads
	// and writes it in place of a real git index.
	Files map[string][]byte

	// Head is the OID ResolveHead reports, or "" if history is empty.
	Head string
	// ReflogMessages records every message passed to UpdateHead, in order.
	ReflogMessages []string

	commits map[string]CommitSpec
	next    int
}

// NewFake returns an empty Fake repo with no history.
func NewFake() *Fake {
	return &Fake{commits: make(map[string]CommitSpec), Files: make(map[string][]byte)}
}

// ApplyPatch implements Index by parsing the patch file at path and applying
// each of its files to Fake.Files in place, via patch.File.ApplyStrict.
func (f *Fake) ApplyPatch(ctx context.Context, path string) error {
	f.Applied = append(f.Applied, path)
	if err, ok := f.FailOn[path]; ok {
		return err
	}
	if f.ApplyErr != nil {
		return f.ApplyErr
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("vcs: reading patch %s: %w", path, err)
	}
	files, _, err := patch.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("vcs: parsing patch %s: %w", path, err)
	}

	if f.Files == nil {
		f.Files = make(map[string][]byte)
	}
	for _, pf := range files {
		if pf.IsDelete {
			delete(f.Files, pf.OldName)
			continue
		}

		var old []byte
		if !pf.IsNew {
			old = f.Files[pf.OldName]
		}

		var buf bytes.Buffer
		if err := pf.ApplyStrict(&buf, bytes.NewReader(old)); err != nil {
			return fmt.Errorf("vcs: applying %s: %w", pf.QuotedName(), err)
		}

		newPath := pf.Path()
		if pf.IsRename && pf.OldName != newPath {
			delete(f.Files, pf.OldName)
		}
		f.Files[newPath] = buf.Bytes()
	}
	return nil
}

func (f *Fake) WriteTree(ctx context.Context) (string, error) {
	return "tree-stub", nil
}

func (f *Fake) ResolveHead(ctx context.Context) (string, bool, error) {
	if f.Head == "" {
		return "", false, nil
	}
	return f.Head, true, nil
}

func (f *Fake) WriteCommit(ctx context.Context, c CommitSpec) (string, error) {
	f.next++
	oid := fmt.Sprintf("commit-%d", f.next)
	f.commits[oid] = c
	return oid, nil
}

func (f *Fake) UpdateHead(ctx context.Context, newOID, reflogMessage string) error {
	f.Head = newOID
	f.ReflogMessages = append(f.ReflogMessages, reflogMessage)
	return nil
}

// Commit returns the CommitSpec written for oid, for assertions in tests.
func (f *Fake) Commit(oid string) (CommitSpec, bool) {
	c, ok := f.commits[oid]
	return c, ok
}

var _ Repo = (*Fake)(nil)

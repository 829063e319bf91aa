// Package driver implements the Apply/Commit Driver from spec.md §4.6: the
// per-patch loop that parses, applies, and commits each patch file in the
// session directory, advancing the durable cursor only after the commit is
// reachable from HEAD.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bkeyes/gitam/authorscript"
	"github.com/bkeyes/gitam/config"
	"github.com/bkeyes/gitam/mailinfo"
	"github.com/bkeyes/gitam/metrics"
	"github.com/bkeyes/gitam/patch"
	"github.com/bkeyes/gitam/session"
	"github.com/bkeyes/gitam/vcs"
)

// ApplyError is returned when a patch fails to apply to the index, after the
// driver has already printed spec.md §4.6 step 6's diagnostic. It carries the
// patch number, subject and path; the session is left intact and the caller
// exits 128.
type ApplyError struct {
	PatchNum  int
	Subject   string
	PatchPath string
	Err       error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("patch failed at %04d %s: %v", e.PatchNum, e.Subject, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// Driver runs the per-patch loop against a session and a vcs.Repo.
type Driver struct {
	Session *session.Session
	Repo    vcs.Repo
	Cfg     config.Config
	Metrics *metrics.Collector
	Log     zerolog.Logger
	Stdout  io.Writer
}

// New returns a Driver with the given collaborators. Stdout is set to
// os.Stdout; callers may replace it after construction.
func New(sess *session.Session, repo vcs.Repo, cfg config.Config, mc *metrics.Collector, log zerolog.Logger) *Driver {
	return &Driver{Session: sess, Repo: repo, Cfg: cfg, Metrics: mc, Log: log, Stdout: os.Stdout}
}

// Run executes spec.md §4.6's loop for cur in [cur, last]. It returns nil on
// a clean run to completion (the caller is then responsible for destroying
// the session, per spec.md §4.6's closing sentence and §4.7). On apply
// failure, it returns an *ApplyError and leaves the session's on-disk state
// exactly as needed for a later resume.
func (d *Driver) Run(ctx context.Context, cur, last int) error {
	for ; cur <= last; cur++ {
		if err := d.step(ctx, cur); err != nil {
			return err
		}
	}
	return nil
}

// step processes one patch number, advancing the durable cursor when it
// completes without error.
func (d *Driver) step(ctx context.Context, cur int) error {
	path := d.Session.PatchPath(cur)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			d.Log.Debug().Int("patch", cur).Msg("patch file absent, skipping")
			d.Metrics.PatchSkipped()
			return d.advance(cur)
		}
		return fmt.Errorf("driver: stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("driver: open %s: %w", path, err)
	}
	info, err := mailinfo.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("driver: patch %04d: %w", cur, err)
	}
	if info.Skip {
		d.Log.Info().Int("patch", cur).Msg("skipping Mail System Internal Data entry")
		d.Metrics.PatchSkipped()
		return d.advance(cur)
	}

	script := authorscript.Script{Name: info.AuthorName, Email: info.AuthorEmail, Date: info.AuthorDate}
	if err := d.Session.WriteScalar("author-script", authorscript.Write(script)); err != nil {
		return fmt.Errorf("driver: writing author-script: %w", err)
	}
	if err := d.Session.WriteScalar("final-commit", []byte(info.Msg)); err != nil {
		return fmt.Errorf("driver: writing final-commit: %w", err)
	}

	subject := firstLine(info.Msg)
	fmt.Fprintf(d.Stdout, "Applying: %s\n", subject)
	d.logTouchedFiles(cur, info.Patch)

	start := time.Now()
	applyErr := d.Repo.ApplyPatch(ctx, path)
	d.Metrics.ObserveApplyDuration(time.Since(start))
	if applyErr != nil {
		d.Metrics.PatchFailed()
		fmt.Fprintf(d.Stdout, "Patch failed at %04d %s\n", cur, subject)
		if d.Cfg.AdviceAMWorkDir {
			fmt.Fprintf(d.Stdout, "The copy of the patch that failed is found in: %s\n", path)
		}
		return &ApplyError{PatchNum: cur, Subject: subject, PatchPath: path, Err: applyErr}
	}

	if err := d.commit(ctx, script, info.Msg, subject); err != nil {
		d.Metrics.PatchFailed()
		return fmt.Errorf("driver: committing patch %04d: %w", cur, err)
	}
	d.Metrics.PatchApplied()

	return d.advance(cur)
}

// logTouchedFiles parses the diff body with the patch package and logs the
// files it touches before handing the same bytes to the external applicator.
// It is purely diagnostic: spec.md §4.6 step 6 names "git apply --index" as
// the applicator of record, so a parse failure here is logged and ignored
// rather than treated as fatal — the external tool remains authoritative.
func (d *Driver) logTouchedFiles(cur int, diff []byte) {
	files, _, err := patch.Parse(bytes.NewReader(diff))
	if err != nil {
		d.Log.Debug().Int("patch", cur).Err(err).Msg("could not pre-parse diff for logging")
		return
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.QuotedName()
	}
	d.Log.Debug().Int("patch", cur).Strs("files", names).Msg("patch touches files")
}

func (d *Driver) commit(ctx context.Context, script authorscript.Script, msg, subject string) error {
	tree, err := d.Repo.WriteTree(ctx)
	if err != nil {
		return fmt.Errorf("write-tree: %w", err)
	}

	var parents []string
	head, ok, err := d.Repo.ResolveHead(ctx)
	if err != nil {
		return fmt.Errorf("resolving HEAD: %w", err)
	}
	if ok {
		parents = []string{head}
	} else {
		d.Log.Info().Msg("applying to an empty history")
	}

	identity, err := formatIdentity(script)
	if err != nil {
		return fmt.Errorf("formatting author identity: %w", err)
	}

	date := patch.ParseDate(script.Date)
	when := date.Parsed
	if when.IsZero() {
		when = time.Now()
	}

	oid, err := d.Repo.WriteCommit(ctx, vcs.CommitSpec{
		Tree:    tree,
		Parents: parents,
		Author:  identity,
		Date:    when,
		Message: msg,
	})
	if err != nil {
		return fmt.Errorf("commit-tree: %w", err)
	}

	reflog := d.Cfg.ReflogAction + ": " + subject
	if err := d.Repo.UpdateHead(ctx, oid, reflog); err != nil {
		return fmt.Errorf("updating HEAD: %w", err)
	}
	return nil
}

// formatIdentity builds a strictly validated patch.Identity from the raw
// author-script fields, per spec.md §4.6 step 7's "strict validation".
func formatIdentity(s authorscript.Script) (patch.Identity, error) {
	if s.Name == "" || s.Email == "" {
		return patch.Identity{}, fmt.Errorf("incomplete author identity: name=%q email=%q", s.Name, s.Email)
	}
	return patch.Identity{Name: s.Name, Email: s.Email}, nil
}

// advance implements spec.md §4.6 step 8 ("am_next"): rewrite next, and
// clear the per-patch scratch state.
func (d *Driver) advance(cur int) error {
	if err := d.Session.WriteInt("next", cur+1); err != nil {
		return fmt.Errorf("driver: advancing cursor: %w", err)
	}
	if err := d.Session.RemoveScalar("author-script"); err != nil {
		return err
	}
	if err := d.Session.RemoveScalar("final-commit"); err != nil {
		return err
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Package controller implements the Session Controller from spec.md §4.7:
// it decides between resuming an in-progress session and setting up a new
// one, then hands off to the driver.
package controller

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/bkeyes/gitam/authorscript"
	"github.com/bkeyes/gitam/config"
	"github.com/bkeyes/gitam/detect"
	"github.com/bkeyes/gitam/driver"
	"github.com/bkeyes/gitam/mailsplit"
	"github.com/bkeyes/gitam/metrics"
	"github.com/bkeyes/gitam/session"
	"github.com/bkeyes/gitam/vcs"
)

// ErrUnknownFormat is returned when the input paths cannot be classified as
// a supported patch format. Per spec.md §4.7 / §6, this maps to exit 128.
var ErrUnknownFormat = fmt.Errorf("controller: could not detect patch format")

// Controller owns the session lifecycle for one invocation.
type Controller struct {
	RepoMetadataDir string // e.g. ".git"
	Repo            vcs.Repo
	Cfg             config.Config
	Metrics         *metrics.Collector
	Log             zerolog.Logger
}

// New returns a Controller rooted at repoMetadataDir (the ".git" directory
// or equivalent).
func New(repoMetadataDir string, repo vcs.Repo, cfg config.Config, mc *metrics.Collector, log zerolog.Logger) *Controller {
	return &Controller{RepoMetadataDir: repoMetadataDir, Repo: repo, Cfg: cfg, Metrics: mc, Log: log}
}

// Run resolves or creates a session for paths, then runs the driver to
// completion or failure. On success, the session directory is destroyed.
// On apply failure it is left intact for an out-of-scope --skip/--abort
// continuation, matching spec.md §4.6 step 6.
func (c *Controller) Run(ctx context.Context, paths []string) error {
	sess := session.New(filepath.Join(c.RepoMetadataDir, "rebase-apply"))

	inProgress, err := sess.InProgress()
	if err != nil {
		return fmt.Errorf("controller: checking session: %w", err)
	}

	var cur, last int
	if inProgress {
		cur, last, err = c.resume(sess)
		if err != nil {
			return err
		}
	} else {
		cur, last, err = c.setup(sess, paths)
		if err != nil {
			return err
		}
	}

	d := driver.New(sess, c.Repo, c.Cfg, c.Metrics, c.Log)
	runErr := d.Run(ctx, cur, last)
	if runErr != nil {
		return runErr
	}

	if err := sess.Destroy(); err != nil {
		return fmt.Errorf("controller: destroying session: %w", err)
	}
	return nil
}

// resume loads cur/last from an in-progress session, per spec.md §4.7's
// second bullet. A malformed author script is fatal; an absent one is
// tolerated as "no author state yet" and simply ignored here — the driver
// will regenerate it from the next patch's headers.
func (c *Controller) resume(sess *session.Session) (cur, last int, err error) {
	cur, err = sess.ReadInt("next")
	if err != nil {
		return 0, 0, fmt.Errorf("controller: reading next: %w", err)
	}
	last, err = sess.ReadInt("last")
	if err != nil {
		return 0, 0, fmt.Errorf("controller: reading last: %w", err)
	}

	if text, ok, rerr := sess.ReadScalar("author-script", false); rerr != nil {
		return 0, 0, fmt.Errorf("controller: reading author-script: %w", rerr)
	} else if ok {
		if _, perr := authorscript.Parse([]byte(text)); perr != nil {
			return 0, 0, fmt.Errorf("controller: %w", perr)
		}
	}

	c.Log.Info().Int("next", cur).Int("last", last).Msg("resuming session")
	return cur, last, nil
}

// setup detects the patch format, splits the series into the session
// directory, and writes the initial cursor bounds, per spec.md §4.7's third
// bullet. Any failure after the directory is created destroys the
// half-built session before returning.
func (c *Controller) setup(sess *session.Session, paths []string) (cur, last int, err error) {
	format, err := detect.DetectFormat(paths)
	if err != nil {
		return 0, 0, fmt.Errorf("controller: detecting format: %w", err)
	}
	if format == detect.Unknown {
		return 0, 0, ErrUnknownFormat
	}

	if err := sess.EnsureDir(); err != nil {
		return 0, 0, fmt.Errorf("controller: creating session directory: %w", err)
	}

	last, err = mailsplit.Split(sess, paths)
	if err != nil {
		_ = sess.Destroy()
		return 0, 0, fmt.Errorf("controller: splitting patch series: %w", err)
	}

	cur = 1
	if err := sess.WriteInt("next", cur); err != nil {
		_ = sess.Destroy()
		return 0, 0, fmt.Errorf("controller: writing next: %w", err)
	}
	if err := sess.WriteInt("last", last); err != nil {
		_ = sess.Destroy()
		return 0, 0, fmt.Errorf("controller: writing last: %w", err)
	}

	c.Log.Info().Int("last", last).Strs("paths", paths).Msg("new session")
	return cur, last, nil
}

// ResolvePaths resolves positional CLI arguments relative to the caller's
// working directory, per spec.md §6: "relative to the current prefix
// unless absolute or unless no prefix is supplied." "-" denotes stdin and
// is passed through unresolved.
func ResolvePaths(prefix string, args []string) []string {
	if prefix == "" {
		return args
	}
	out := make([]string, len(args))
	for i, a := range args {
		if a == "-" || filepath.IsAbs(a) {
			out[i] = a
			continue
		}
		out[i] = filepath.Join(prefix, a)
	}
	return out
}

// ValidatePatchFormat enforces spec.md §6's rule that --patch-format accepts
// exactly "mbox".
func ValidatePatchFormat(value string) error {
	if value != "mbox" {
		return fmt.Errorf("controller: unsupported --patch-format %q, only \"mbox\" is supported", value)
	}
	return nil
}

// Command gitam reimplements the "git am" mail-patch applier described in
// spec.md: it reads a patch series (mbox or Maildir), applies each patch to
// the index, and commits the result, resuming cleanly after a crash or a
// failed apply.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bkeyes/gitam/config"
	"github.com/bkeyes/gitam/controller"
	"github.com/bkeyes/gitam/metrics"
	"github.com/bkeyes/gitam/vcs"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the gitam CLI with the given args, returning the process
// exit code per spec.md §6: 0 on success, 128 on any unrecoverable failure.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "gitam: %v\n", err)
		return 128
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var patchFormat string

	root := &cobra.Command{
		Use:           "gitam [(<mbox>|<Maildir>)...]",
		Short:         "Apply a series of patches from a mailbox",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if patchFormat != "" {
				if err := controller.ValidatePatchFormat(patchFormat); err != nil {
					return err
				}
			}
			return runAM(cmd.Context(), args, stdout, stderr)
		},
	}
	root.Flags().StringVar(&patchFormat, "patch-format", "", `patch format; only "mbox" is supported`)
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

func runAM(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	log := zerolog.New(stderr).With().Timestamp().Logger()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	gitDir, err := findGitDir(cwd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(filepath.Join(gitDir, "gitam.toml"))
	if err != nil {
		return err
	}
	if !cfg.UseBuiltinAM {
		log.Info().Msg("_GIT_USE_BUILTIN_AM is empty or 0; no legacy implementation to re-exec into, continuing")
	}

	mc := metrics.New(prometheus.NewRegistry())
	repo := vcs.NewGit(filepath.Dir(gitDir))

	paths := controller.ResolvePaths(cwd, args)

	c := controller.New(gitDir, repo, cfg, mc, log)
	return c.Run(ctx, paths)
}

// findGitDir walks upward from dir looking for a ".git" directory, the way
// git itself discovers repository metadata.
func findGitDir(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, ".git")
		if fi, err := os.Stat(candidate); err == nil && fi.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a git repository (no .git/ found from %s)", dir)
		}
		dir = parent
	}
}

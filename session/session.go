// Package session owns the on-disk session directory that makes a patch
// series application resumable. It implements the Session Store described in
// spec.md §4.1: scalar read/write primitives, the presence predicate, and
// recursive destruction, with no locking of its own (spec.md §5 — concurrent
// sessions on the same repository are explicitly outside this contract).
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Prec is the fixed width of zero-padded patch file names, per spec.md §3.
const Prec = 4

// Session represents the durable state rooted at Dir. New does not create
// Dir; it is created lazily by EnsureDir or by the first call to WriteScalar.
type Session struct {
	Dir string
}

// New returns a Session rooted at dir. It does not touch the filesystem.
func New(dir string) *Session {
	return &Session{Dir: dir}
}

// Path joins rel onto the session root.
func (s *Session) Path(rel string) string {
	return filepath.Join(s.Dir, rel)
}

// PatchPath returns the path of the NNNN file for the given 1-indexed patch
// number, zero-padded to Prec digits.
func (s *Session) PatchPath(n int) string {
	return s.Path(fmt.Sprintf("%0*d", Prec, n))
}

// InProgress reports whether a session exists: the session directory must be
// a directory, and both "next" and "last" must be regular files. Any stat
// failure other than "not found" is fatal, per spec.md §4.1.
func (s *Session) InProgress() (bool, error) {
	info, err := os.Stat(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("session: stat %s: %w", s.Dir, err)
	}
	if !info.IsDir() {
		return false, nil
	}

	for _, rel := range []string{"next", "last"} {
		fi, err := os.Stat(s.Path(rel))
		if err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("session: stat %s: %w", s.Path(rel), err)
		}
		if !fi.Mode().IsRegular() {
			return false, nil
		}
	}
	return true, nil
}

// ReadScalar reads the contents of the file named rel within the session
// directory. If the file does not exist, it returns ("", false, nil) — the
// "absent" sentinel described for optional files in spec.md §3/§4. Any other
// read failure is fatal. If trim is set, leading and trailing whitespace is
// stripped.
func (s *Session) ReadScalar(rel string, trim bool) (string, bool, error) {
	data, err := os.ReadFile(s.Path(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("session: read %s: %w", rel, err)
	}
	text := string(data)
	if trim {
		text = strings.TrimSpace(text)
	}
	return text, true, nil
}

// ReadInt reads a scalar file as a decimal integer, parsed up to the first
// non-digit byte, per spec.md §6. It returns -1 if the file does not exist.
func (s *Session) ReadInt(rel string) (int, error) {
	text, ok, err := s.ReadScalar(rel, true)
	if err != nil {
		return 0, err
	}
	if !ok {
		return -1, nil
	}
	return parseLeadingInt(text)
}

func parseLeadingInt(s string) (int, error) {
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || (end == 0 && s[end] == '-')) {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("session: no leading integer in %q", s)
	}
	return strconv.Atoi(s[:end])
}

// WriteScalar writes data to the file named rel within the session
// directory, creating the directory if necessary. The write is made
// crash-safer by writing to a uniquely-named temporary file in the same
// directory and renaming it into place, so a reader never observes a
// partially written file.
func (s *Session) WriteScalar(rel string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o777); err != nil {
		return fmt.Errorf("session: mkdir %s: %w", s.Dir, err)
	}

	tmp := s.Path(rel + "." + uuid.NewString() + ".tmp")
	if err := os.WriteFile(tmp, data, 0o666); err != nil {
		return fmt.Errorf("session: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path(rel)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("session: rename %s: %w", tmp, err)
	}
	return nil
}

// WriteInt writes a scalar file containing the decimal form of n followed by
// a newline.
func (s *Session) WriteInt(rel string, n int) error {
	return s.WriteScalar(rel, []byte(strconv.Itoa(n)+"\n"))
}

// RemoveScalar deletes the file named rel, tolerating the case where it
// never existed.
func (s *Session) RemoveScalar(rel string) error {
	if err := os.Remove(s.Path(rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: remove %s: %w", rel, err)
	}
	return nil
}

// Destroy recursively removes the session directory. It is a no-op if the
// directory does not exist.
func (s *Session) Destroy() error {
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("session: destroy %s: %w", s.Dir, err)
	}
	return nil
}

// EnsureDir creates the session directory if it does not already exist,
// tolerating the case where it is already present (spec.md §4.7: "tolerate
// already exists").
func (s *Session) EnsureDir() error {
	if err := os.Mkdir(s.Dir, 0o777); err != nil && !os.IsExist(err) {
		return fmt.Errorf("session: mkdir %s: %w", s.Dir, err)
	}
	return nil
}

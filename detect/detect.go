// Package detect implements the Format Detector from spec.md §4.2: it
// classifies a list of input path tokens as Mbox or Unknown so the Session
// Controller can decide how the Splitter should read them.
package detect

import (
	"bufio"
	"os"
	"strings"
)

// Format is the detected shape of a patch input.
type Format int

const (
	// Unknown means the input could not be classified as a patch mailbox.
	Unknown Format = iota
	// Mbox means the input should be read as mbox-formatted mail (the only
	// format this version supports beyond Maildir, per spec.md §1).
	Mbox
)

func (f Format) String() string {
	switch f {
	case Mbox:
		return "mbox"
	default:
		return "unknown"
	}
}

// DetectFormat classifies paths following spec.md §4.2's rules, evaluated in
// order:
//
//  1. An empty list, a first element of "-" (stdin), or a first element
//     naming a directory is always Mbox.
//  2. Otherwise the first three non-blank lines of the first path are read.
//     If line 1 begins with "From " or "From: ", it is Mbox.
//  3. Otherwise, if all three lines are non-empty and IsEmail holds for the
//     file, it is Mbox.
//  4. Otherwise Unknown.
func DetectFormat(paths []string) (Format, error) {
	if len(paths) == 0 || paths[0] == "-" {
		return Mbox, nil
	}

	first := paths[0]
	if info, err := os.Stat(first); err == nil && info.IsDir() {
		return Mbox, nil
	} else if err != nil && !os.IsNotExist(err) {
		return Unknown, err
	}

	f, err := os.Open(first)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	lines, err := firstNonBlankLines(f, 3)
	if err != nil {
		return Unknown, err
	}

	if len(lines) > 0 && (strings.HasPrefix(lines[0], "From ") || strings.HasPrefix(lines[0], "From: ")) {
		return Mbox, nil
	}

	allNonEmpty := len(lines) == 3
	for _, l := range lines {
		if l == "" {
			allNonEmpty = false
		}
	}
	if !allNonEmpty {
		return Unknown, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return Unknown, err
	}
	if IsEmail(f) {
		return Mbox, nil
	}
	return Unknown, nil
}

// firstNonBlankLines returns up to n trimmed, non-blank lines read from r in
// order, stopping early at EOF.
func firstNonBlankLines(r *os.File, n int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for len(lines) < n && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// IsEmail scans the header area of r (the lines preceding the first empty
// line) and reports whether every line has the shape of an RFC 2822 header
// field: one or more printable ASCII bytes in the ranges 0x21..0x39 or
// 0x3B..0x7E (everything printable except ':'), followed by a colon that is
// not the first character. Folded continuation lines — those beginning with
// a space or tab — are skipped. Reaching EOF or an empty line before any
// violation is found terminates the scan positively.
func IsEmail(r *os.File) bool {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			return true
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}
		if !isHeaderFieldLine(line) {
			return false
		}
	}
	return scanner.Err() == nil
}

func isHeaderFieldLine(line string) bool {
	colon := -1
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ':' {
			colon = i
			break
		}
		if !(c >= 0x21 && c <= 0x39) && !(c >= 0x3B && c <= 0x7E) {
			return false
		}
	}
	return colon > 0
}

// Package authorscript implements the Author Script described in spec.md
// §4.5: a three-line, POSIX-shell single-quoted serialization of an author
// identity (name, email, date) that survives a crash between the Patch
// Parser extracting it and the Apply/Commit Driver consuming it.
//
// The quoting rules mirror the teacher's patch/quote.go, which already
// implements the single-quote escaping git uses for file names; this package
// reuses the same "wrap, escape embedded quote as '\''" shape for shell
// values instead of path components.
package authorscript

import (
	"errors"
	"fmt"
	"strings"
)

const (
	namePrefix  = "GIT_AUTHOR_NAME="
	emailPrefix = "GIT_AUTHOR_EMAIL="
	datePrefix  = "GIT_AUTHOR_DATE="
)

// Script is the in-memory form of the three author-script fields.
type Script struct {
	Name  string
	Email string
	Date  string
}

// ErrMalformed is returned by Parse whenever the input does not match the
// strict three-line grammar. Per spec.md §4.5, a malformed author script is
// always a fatal session error: the driver never guesses author identity.
var ErrMalformed = errors.New("authorscript: malformed author script")

// Write renders s as the three-line wire format, each line terminated by
// "\n" and nothing else following.
func Write(s Script) []byte {
	var b strings.Builder
	b.WriteString(namePrefix)
	b.WriteString(quote(s.Name))
	b.WriteByte('\n')
	b.WriteString(emailPrefix)
	b.WriteString(quote(s.Email))
	b.WriteByte('\n')
	b.WriteString(datePrefix)
	b.WriteString(quote(s.Date))
	b.WriteByte('\n')
	return []byte(b.String())
}

// Parse strictly decodes the three-line wire format produced by Write. Any
// deviation — wrong prefix, wrong line count, malformed quoting, or trailing
// bytes after the third line — is reported as ErrMalformed.
func Parse(data []byte) (Script, error) {
	text := string(data)
	lines := strings.Split(text, "\n")

	// Write always terminates the third line with \n and nothing else, so a
	// well-formed script splits into exactly 4 elements: 3 lines and a
	// trailing empty string.
	if len(lines) != 4 || lines[3] != "" {
		return Script{}, fmt.Errorf("%w: expected 3 newline-terminated lines, got %d", ErrMalformed, len(lines)-1)
	}

	name, err := dequotePrefixed(lines[0], namePrefix)
	if err != nil {
		return Script{}, err
	}
	email, err := dequotePrefixed(lines[1], emailPrefix)
	if err != nil {
		return Script{}, err
	}
	date, err := dequotePrefixed(lines[2], datePrefix)
	if err != nil {
		return Script{}, err
	}

	return Script{Name: name, Email: email, Date: date}, nil
}

func dequotePrefixed(line, prefix string) (string, error) {
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("%w: expected prefix %q in %q", ErrMalformed, prefix, line)
	}
	return dequote(line[len(prefix):])
}

// quote wraps s in single quotes, encoding every embedded single quote as
// the four-byte sequence '\'' — close the quote, emit an escaped literal
// quote, reopen the quote.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// dequote reverses quote, requiring the entire string to be a single
// quoted segment (or a concatenation of quoted segments joined by the
// '\'' escape) with no unquoted bytes anywhere, including whitespace.
func dequote(s string) (string, error) {
	if len(s) < 2 || s[0] != '\'' {
		return "", fmt.Errorf("%w: value not single-quoted: %q", ErrMalformed, s)
	}

	var b strings.Builder
	i := 1
	for i < len(s) {
		if s[i] == '\'' {
			// Closing quote: either end of string, or the start of a
			// '\'' escaped embedded quote.
			if i+1 == len(s) {
				return b.String(), nil
			}
			if i+3 < len(s) && s[i+1] == '\\' && s[i+2] == '\'' && s[i+3] == '\'' {
				b.WriteByte('\'')
				i += 4
				continue
			}
			return "", fmt.Errorf("%w: unescaped quote before end of value: %q", ErrMalformed, s)
		}
		b.WriteByte(s[i])
		i++
	}
	return "", fmt.Errorf("%w: unterminated quoted value: %q", ErrMalformed, s)
}

package patch

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Identity identifies a person who authored or committed a change. It is
// reused by the commit-writing plumbing to validate and format the author
// triple recovered from a mail patch before it is embedded in a commit
// object.
type Identity struct {
	Name  string
	Email string
}

func (i Identity) String() string {
	name := i.Name
	if name == "" {
		name = `""`
	}
	return fmt.Sprintf("%s <%s>", name, i.Email)
}

// ParseIdentity parses an identity string of the form "Name <email>". Like
// Git, it does not validate that email is a well-formed address, only that
// it is non-empty; name must not contain '<' and email must not contain '>'.
func ParseIdentity(s string) (Identity, error) {
	var emailStart, emailEnd int
	for i, c := range s {
		if c == '<' && emailStart == 0 {
			emailStart = i + 1
		}
		if c == '>' && emailStart > 0 {
			emailEnd = i
			break
		}
	}
	if emailStart > 0 && emailEnd == 0 {
		return Identity{}, fmt.Errorf("invalid identity string: unclosed email section: %s", s)
	}

	var name, email string
	if emailStart > 0 {
		name = strings.TrimSpace(s[:emailStart-1])
	}
	if emailStart > 0 && emailEnd > 0 {
		email = strings.TrimSpace(s[emailStart:emailEnd])
	}
	if name == "" || email == "" {
		return Identity{}, fmt.Errorf("invalid identity string: %s", s)
	}

	return Identity{Name: name, Email: email}, nil
}

// Date is the timestamp an identity authored or committed a change. It
// carries both the raw string and, when recognized, a parsed time.
type Date struct {
	Parsed time.Time
	Raw    string
}

// IsParsed reports whether Parsed was populated.
func (d Date) IsParsed() bool { return !d.Parsed.IsZero() }

// ParseDate parses a date string using the iso, rfc, short, raw, unix, and
// default formats (with local variants) Git accepts for its own --date flag.
func ParseDate(s string) Date {
	const (
		isoFormat          = "2006-01-02 15:04:05 -0700"
		isoStrictFormat    = "2006-01-02T15:04:05-07:00"
		rfc2822Format      = "Mon, 02 Jan 2006 15:04:05 -0700"
		shortFormat        = "2006-01-02"
		defaultFormat      = "Mon Jan 02 15:04:05 2006 -0700"
		defaultLocalFormat = "Mon Jan 02 15:04:05 2006"
	)

	d := Date{Raw: s}

	for _, layout := range []string{
		isoFormat,
		isoStrictFormat,
		rfc2822Format,
		shortFormat,
		defaultFormat,
		defaultLocalFormat,
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			d.Parsed = t
			return d
		}
	}

	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		d.Parsed = time.Unix(unix, 0)
		return d
	}

	if space := strings.IndexByte(s, ' '); space > 0 {
		unix, uerr := strconv.ParseInt(s[:space], 10, 64)
		zone, zerr := time.Parse("-0700", s[space+1:])
		if uerr == nil && zerr == nil {
			d.Parsed = time.Unix(unix, 0).In(zone.Location())
			return d
		}
	}

	return d
}

// Package mailinfo implements the Patch Parser described in spec.md §4.4: it
// splits one mail-formatted patch file into its commit message and diff, and
// extracts the author identity carried in the message headers.
//
// The original pipelines through an external mail-header-parser subprocess.
// This implementation follows the same decomposition as the teacher's own
// patch_header.go (parseHeaderMail): it reads the message with net/mail and
// looks up the Subject, From and Date headers directly, rather than shelling
// out.
package mailinfo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"strings"
	"unicode"
)

// skipAuthor is the literal author name that marks an mbox entry as
// procmail/pine housekeeping rather than a real patch (spec.md §4.4 step 4).
const skipAuthor = "Mail System Internal Data"

// Info is the result of parsing one patch file: the commit message body and
// diff extracted from it, plus whatever author identity fields the message
// headers carried.
type Info struct {
	// Msg is the normalized commit message: Subject line(s) followed by a
	// blank line and the stripspace-normalized message body.
	Msg string

	// Patch is the remainder of the message body after the headers —
	// expected to be a unified diff, per spec.md §4.4 step 2's "diff" output.
	Patch []byte

	// AuthorName, AuthorEmail and AuthorDate are the raw (not yet
	// identity-validated) values carried by the From and Date headers. When
	// a header occurs more than once, only its first occurrence is used;
	// later duplicates are ignored.
	AuthorName  string
	AuthorEmail string
	AuthorDate  string

	// Skip is true when the patch is Mail System Internal Data housekeeping
	// that the driver must ignore without failing the series.
	Skip bool
}

// ErrEmptyPatch is returned by Parse when the diff portion of the message is
// empty, per spec.md §4.4 step 5.
var ErrEmptyPatch = errors.New("mailinfo: patch is empty; use --skip or --abort")

// Parse reads one patch file (a single RFC 2822 message, as produced by
// mailsplit) and extracts its message and diff.
func Parse(r io.Reader) (*Info, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("mailinfo: reading message: %w", err)
	}

	info := &Info{}

	subject := decodeHeaderValue(msg.Header.Get("Subject"))
	info.AuthorDate = msg.Header.Get("Date")

	if addrs, aerr := msg.Header.AddressList("From"); aerr == nil && len(addrs) > 0 {
		info.AuthorName = addrs[0].Name
		info.AuthorEmail = addrs[0].Address
	} else if from := msg.Header.Get("From"); from != "" {
		// Fall back to the raw header value: the upstream mailinfo tool
		// tolerates From lines net/mail rejects as malformed addresses.
		info.AuthorName = from
	}

	if info.AuthorName == skipAuthor {
		info.Skip = true
		return info, nil
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("mailinfo: reading body: %w", err)
	}

	patch, msgLines := splitMessageAndPatch(body)
	if len(strings.TrimSpace(string(patch))) == 0 {
		return nil, ErrEmptyPatch
	}
	info.Patch = patch

	var b strings.Builder
	b.WriteString(subject)
	b.WriteString("\n\n")
	b.WriteString(stripspace(msgLines))
	info.Msg = b.String()

	return info, nil
}

// splitMessageAndPatch separates the free-text commit message from the
// trailing unified diff. It scans for the first line that looks like the
// start of a diff ("diff --git ", "Index: ", or, on any line but the first,
// a line beginning with "--- ") and treats everything from there to the end of the body as the
// patch, following the same boundary format git itself emits for
// format-patch mail.
func splitMessageAndPatch(body []byte) (patch []byte, message string) {
	lines := strings.SplitAfter(string(body), "\n")
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(trimmed, "diff --git ") || strings.HasPrefix(trimmed, "Index: ") ||
			(strings.HasPrefix(trimmed, "--- ") && i > 0) {
			return []byte(strings.Join(lines[i:], "")), strings.Join(lines[:i], "")
		}
	}
	return []byte(""), string(body)
}

// stripspace implements the whitespace normalization spec.md §4.4 step 6
// delegates to the external "stripspace" tool: strip trailing whitespace
// from every line, collapse runs of blank lines to one, and trim leading and
// trailing blank lines.
func stripspace(s string) string {
	scanner := bufio.NewScanner(strings.NewReader(s))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRightFunc(scanner.Text(), unicode.IsSpace))
	}

	var out []string
	blank := false
	for _, l := range lines {
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// decodeHeaderValue decodes RFC 2047 encoded-words in a raw header value,
// falling back to the raw value if it is not validly encoded.
func decodeHeaderValue(s string) string {
	dec := new(mime.WordDecoder)
	if decoded, err := dec.DecodeHeader(s); err == nil {
		return decoded
	}
	return s
}

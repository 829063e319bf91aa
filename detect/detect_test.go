package detect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestIsEmail(t *testing.T) {
	tests := map[string]struct {
		content string
		want    bool
	}{
		"fromColon":    {"From: a@b\n\nbody\n", true},
		"customHeader": {"X-Foo: bar\n\n", true},
		"tightColon":   {"Subject:x\n\n", true},
		"noColon":      {"no colon here\n\n", false},
		"leadingColon": {": leading-colon\n\n", false},
		"badChar":      {"bad char=: x\n\n", false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeTemp(t, tt.content)
			f, err := os.Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer f.Close()
			if got := IsEmail(f); got != tt.want {
				t.Errorf("IsEmail(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestDetectFormatStdinAndEmpty(t *testing.T) {
	for _, paths := range [][]string{nil, {"-"}, {"-", "ignored"}} {
		got, err := DetectFormat(paths)
		if err != nil {
			t.Fatalf("DetectFormat(%v): %v", paths, err)
		}
		if got != Mbox {
			t.Errorf("DetectFormat(%v) = %v, want Mbox", paths, got)
		}
	}
}

func TestDetectFormatDirectory(t *testing.T) {
	got, err := DetectFormat([]string{t.TempDir()})
	if err != nil {
		t.Fatalf("DetectFormat: %v", err)
	}
	if got != Mbox {
		t.Errorf("DetectFormat(dir) = %v, want Mbox", got)
	}
}

func TestDetectFormatMboxFromLine(t *testing.T) {
	path := writeTemp(t, "From mailer@example.com Mon Jan 1 00:00:00 2024\nSubject: x\n\n")
	got, err := DetectFormat([]string{path})
	if err != nil {
		t.Fatalf("DetectFormat: %v", err)
	}
	if got != Mbox {
		t.Errorf("DetectFormat = %v, want Mbox", got)
	}
}

func TestDetectFormatUnknown(t *testing.T) {
	path := writeTemp(t, strings.Repeat("not a header line\n", 3))
	got, err := DetectFormat([]string{path})
	if err != nil {
		t.Fatalf("DetectFormat: %v", err)
	}
	if got != Unknown {
		t.Errorf("DetectFormat = %v, want Unknown", got)
	}
}

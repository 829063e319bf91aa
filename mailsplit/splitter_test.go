package mailsplit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bkeyes/gitam/session"
)

const twoMessageMbox = `From a@example.com Mon Jan  1 00:00:00 2024
Subject: first

first body
From b@example.com Mon Jan  1 00:01:00 2024
Subject: second

second body
`

func TestSplitMbox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.mbox")
	if err := os.WriteFile(path, []byte(twoMessageMbox), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sess := session.New(filepath.Join(t.TempDir(), "rebase-apply"))
	last, err := Split(sess, []string{path})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if last != 2 {
		t.Fatalf("Split last = %d, want 2", last)
	}

	first, ok, err := sess.ReadScalar("0001", false)
	if err != nil || !ok {
		t.Fatalf("ReadScalar(0001) ok=%v err=%v", ok, err)
	}
	if !strings.Contains(first, "Subject: first") {
		t.Errorf("patch 1 missing subject: %q", first)
	}

	second, ok, err := sess.ReadScalar("0002", false)
	if err != nil || !ok {
		t.Fatalf("ReadScalar(0002) ok=%v err=%v", ok, err)
	}
	if !strings.Contains(second, "Subject: second") {
		t.Errorf("patch 2 missing subject: %q", second)
	}
}

const oneMessageMbox = `From c@example.com Mon Jan  1 00:02:00 2024
Subject: third

third body
`

func TestSplitMultiplePathsConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()
	firstPath := filepath.Join(dir, "series.mbox")
	if err := os.WriteFile(firstPath, []byte(twoMessageMbox), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	secondPath := filepath.Join(dir, "more.mbox")
	if err := os.WriteFile(secondPath, []byte(oneMessageMbox), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sess := session.New(filepath.Join(t.TempDir(), "rebase-apply"))
	last, err := Split(sess, []string{firstPath, secondPath})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if last != 3 {
		t.Fatalf("Split last = %d, want 3 (two messages from the first path, one from the second)", last)
	}

	third, ok, err := sess.ReadScalar("0003", false)
	if err != nil || !ok {
		t.Fatalf("ReadScalar(0003) ok=%v err=%v", ok, err)
	}
	if !strings.Contains(third, "Subject: third") {
		t.Errorf("patch 3 should come from the second path: %q", third)
	}
}

func TestSplitEmptyMbox(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mbox")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	sess := session.New(filepath.Join(t.TempDir(), "rebase-apply"))
	last, err := Split(sess, []string{path})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if last != 0 {
		t.Fatalf("Split last = %d, want 0", last)
	}
}

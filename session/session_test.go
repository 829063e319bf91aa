package session

import (
	"path/filepath"
	"testing"
)

func TestInProgressAbsent(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "rebase-apply"))
	inProgress, err := s.InProgress()
	if err != nil {
		t.Fatalf("InProgress: %v", err)
	}
	if inProgress {
		t.Fatal("expected no session to be in progress")
	}
}

func TestWriteReadScalarRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "rebase-apply"))

	if err := s.WriteInt("next", 3); err != nil {
		t.Fatalf("WriteInt: %v", err)
	}
	if err := s.WriteInt("last", 7); err != nil {
		t.Fatalf("WriteInt: %v", err)
	}

	inProgress, err := s.InProgress()
	if err != nil {
		t.Fatalf("InProgress: %v", err)
	}
	if !inProgress {
		t.Fatal("expected session to be in progress once next and last exist")
	}

	next, err := s.ReadInt("next")
	if err != nil || next != 3 {
		t.Fatalf("ReadInt(next) = %d, %v, want 3, nil", next, err)
	}
	last, err := s.ReadInt("last")
	if err != nil || last != 7 {
		t.Fatalf("ReadInt(last) = %d, %v, want 7, nil", last, err)
	}
}

func TestReadScalarAbsentIsSentinel(t *testing.T) {
	s := New(t.TempDir())
	n, err := s.ReadInt("next")
	if err != nil {
		t.Fatalf("ReadInt: %v", err)
	}
	if n != -1 {
		t.Fatalf("expected -1 for absent scalar, got %d", n)
	}

	text, ok, err := s.ReadScalar("author-script", true)
	if err != nil {
		t.Fatalf("ReadScalar: %v", err)
	}
	if ok || text != "" {
		t.Fatalf("expected absent scalar, got %q, %v", text, ok)
	}
}

func TestDestroyRemovesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rebase-apply")
	s := New(dir)
	if err := s.WriteInt("next", 1); err != nil {
		t.Fatalf("WriteInt: %v", err)
	}
	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if inProgress, err := s.InProgress(); err != nil || inProgress {
		t.Fatalf("expected session gone after Destroy, inProgress=%v err=%v", inProgress, err)
	}
}

func TestPatchPathPadding(t *testing.T) {
	s := New(t.TempDir())
	for n, want := range map[int]string{
		1:    "0001",
		9:    "0009",
		10:   "0010",
		99:   "0099",
		100:  "0100",
		999:  "0999",
		1000: "1000",
		9999: "9999",
	} {
		got := filepath.Base(s.PatchPath(n))
		if got != want {
			t.Errorf("PatchPath(%d) = %q, want %q", n, got, want)
		}
	}
}

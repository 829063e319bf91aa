package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const newFilePatch = `diff --git a/f b/f
new file mode 100644
index 0000000..3b18e51
--- /dev/null
+++ b/f
@@ -0,0 +1 @@
+hi
`

const modifyFilePatch = `diff --git a/f b/f
index 3b18e51..0f1a7cc 100644
--- a/f
+++ b/f
@@ -1 +1 @@
-hi
+bye
`

const conflictingPatch = `diff --git a/f b/f
index 3b18e51..0f1a7cc 100644
--- a/f
+++ b/f
@@ -1 +1 @@
-nope
+bye
`

func writePatch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFakeApplyPatchCreatesFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFake()

	path := writePatch(t, dir, "0001", newFilePatch)
	if err := f.ApplyPatch(context.Background(), path); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if got, want := string(f.Files["f"]), "hi\n"; got != want {
		t.Errorf("Files[f] = %q, want %q", got, want)
	}
}

func TestFakeApplyPatchModifiesExistingFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFake()

	first := writePatch(t, dir, "0001", newFilePatch)
	if err := f.ApplyPatch(context.Background(), first); err != nil {
		t.Fatalf("ApplyPatch (create): %v", err)
	}

	second := writePatch(t, dir, "0002", modifyFilePatch)
	if err := f.ApplyPatch(context.Background(), second); err != nil {
		t.Fatalf("ApplyPatch (modify): %v", err)
	}
	if got, want := string(f.Files["f"]), "bye\n"; got != want {
		t.Errorf("Files[f] = %q, want %q", got, want)
	}
}

func TestFakeApplyPatchReportsConflict(t *testing.T) {
	dir := t.TempDir()
	f := NewFake()

	first := writePatch(t, dir, "0001", newFilePatch)
	if err := f.ApplyPatch(context.Background(), first); err != nil {
		t.Fatalf("ApplyPatch (create): %v", err)
	}

	second := writePatch(t, dir, "0002", conflictingPatch)
	if err := f.ApplyPatch(context.Background(), second); err == nil {
		t.Fatal("expected a conflict error when context lines do not match")
	}
}

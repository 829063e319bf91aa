package patch

import (
	"strings"
	"testing"
)

func TestWriteQuotedName(t *testing.T) {
	tests := []struct {
		Input    string
		Expected string
	}{
		{"noquotes.txt", `noquotes.txt`},
		{"no quotes.txt", `no quotes.txt`},
		{"new\nline", `"new\nline"`},
		{"escape\x1B null\x00", `"escape\033 null\000"`},
		{"snowman ☃ snowman", `"snowman \342\230\203 snowman"`},
		{"\"already quoted\"", `"\"already quoted\""`},
	}

	for _, test := range tests {
		var b strings.Builder
		writeQuotedName(&b, test.Input)
		if b.String() != test.Expected {
			t.Errorf("writeQuotedName(%q) = %q, want %q", test.Input, b.String(), test.Expected)
		}
	}
}

func TestFileQuotedName(t *testing.T) {
	f := &File{NewName: "weird\nname.go"}
	if got, want := f.QuotedName(), `"weird\nname.go"`; got != want {
		t.Errorf("QuotedName() = %q, want %q", got, want)
	}

	del := &File{OldName: "gone.txt", IsDelete: true}
	if got, want := del.QuotedName(), "gone.txt"; got != want {
		t.Errorf("QuotedName() for a delete = %q, want %q", got, want)
	}
}

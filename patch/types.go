// Package patch parses and applies unified diffs of the kind produced by
// "git format-patch" and consumed by "git apply --index". It is adapted from
// the fragment- and header-parsing model of github.com/bluekeyes/go-gitdiff.
// The driver uses it to inspect a patch's shape (touched files, identity
// formatting, date parsing) before handing the same bytes to the external
// applicator that spec.md §4.6 step 6 names as the applicator of record.
// ApplyStrict and the binary delta applicator back vcs.Fake's in-memory
// index, so tests exercise the same apply path a production "git apply
// --index" would, without actually shelling out.
package patch

import (
	"os"
)

const devNull = "/dev/null"

// LineOp describes the role a line plays within a text fragment.
type LineOp int

const (
	// OpContext indicates a line present in both the old and new content.
	OpContext LineOp = iota
	// OpDelete indicates a line present only in the old content.
	OpDelete
	// OpAdd indicates a line present only in the new content.
	OpAdd
)

func (op LineOp) String() string {
	switch op {
	case OpContext:
		return " "
	case OpDelete:
		return "-"
	case OpAdd:
		return "+"
	default:
		return "?"
	}
}

// Line is a single line within a text fragment, including its trailing
// newline, if any.
type Line struct {
	Op   LineOp
	Line string
}

// Old returns true if the line appears in the pre-image (context or delete).
func (l Line) Old() bool {
	return l.Op == OpContext || l.Op == OpDelete
}

// New returns true if the line appears in the post-image (context or add).
func (l Line) New() bool {
	return l.Op == OpContext || l.Op == OpAdd
}

// NoEOL reports whether the line is missing a trailing newline.
func (l Line) NoEOL() bool {
	return len(l.Line) == 0 || l.Line[len(l.Line)-1] != '\n'
}

// BinaryPatchMethod identifies how a BinaryFragment's data should be applied.
type BinaryPatchMethod int

const (
	// BinaryPatchLiteral indicates the fragment data is the literal new content.
	BinaryPatchLiteral BinaryPatchMethod = iota
	// BinaryPatchDelta indicates the fragment data is a Git packfile delta.
	BinaryPatchDelta
)

// TextFragment describes a single hunk of changes to a text file.
type TextFragment struct {
	Comment string

	OldPosition int64
	OldLines    int64

	NewPosition int64
	NewLines    int64

	LinesAdded   int64
	LinesDeleted int64

	Lines []Line
}

// Validate checks that the fragment's line counts are internally consistent.
func (f *TextFragment) Validate() error {
	var add, del, ctx int64
	for _, l := range f.Lines {
		switch l.Op {
		case OpAdd:
			add++
		case OpDelete:
			del++
		case OpContext:
			ctx++
		}
	}
	if add+ctx != f.NewLines {
		return errFragmentf("fragment new line count %d does not match content (%d)", f.NewLines, add+ctx)
	}
	if del+ctx != f.OldLines {
		return errFragmentf("fragment old line count %d does not match content (%d)", f.OldLines, del+ctx)
	}
	return nil
}

// BinaryFragment describes a binary file change.
type BinaryFragment struct {
	Method BinaryPatchMethod
	Size   int64
	Data   []byte
}

// File describes the changes made to a single file by a patch.
type File struct {
	OldName string
	NewName string

	IsNew    bool
	IsDelete bool
	IsCopy   bool
	IsRename bool
	IsBinary bool

	OldMode os.FileMode
	NewMode os.FileMode

	OldOIDPrefix string
	NewOIDPrefix string
	Score        int

	TextFragments  []*TextFragment
	BinaryFragment *BinaryFragment
	// BinaryMarker is true when the patch declared "Binary files ... differ"
	// without providing fragment data git diff --binary would have produced.
	BinaryMarker bool
}

// Path returns the effective path of the file after the patch is applied,
// falling back to the pre-image path for deletions.
func (f *File) Path() string {
	if f.NewName != "" {
		return f.NewName
	}
	return f.OldName
}

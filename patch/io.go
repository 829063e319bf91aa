package patch

import (
	"bufio"
	"fmt"
	"io"
)

// StringReader is the interface that wraps the ReadString method.
type StringReader interface {
	ReadString(delim byte) (string, error)
}

type readStringReader interface {
	io.Reader
	StringReader
}

// LineReader is the interface that wraps the ReadLine method.
//
// ReadLine reads the next full line of input, returning the data including
// the line ending character(s) and the zero-indexed line number. If ReadLine
// encounters an error before reaching the end of the line, it returns the
// data read before the error, the number of the line, and the error itself
// (often io.EOF). ReadLine returns err != nil if and only if the returned
// data is not a complete line.
type LineReader interface {
	ReadLine() (string, int64, error)
}

// NewLineReader returns a LineReader starting at a specific line and using
// the newline character, '\n', as a line separator. If r is a StringReader,
// it is used directly. Otherwise it is wrapped in a bufio.Reader, which may
// read extra data from the underlying input.
func NewLineReader(r io.Reader, lineno int64) LineReader {
	sr, ok := r.(readStringReader)
	if !ok {
		sr = bufio.NewReader(r)
	}
	return &lineReader{r: sr, n: lineno}
}

type lineReader struct {
	r readStringReader
	n int64
}

func (lr *lineReader) ReadLine() (line string, lineno int64, err error) {
	lineno = lr.n
	line, err = lr.r.ReadString('\n')
	if err == nil {
		lr.n++
	}
	return
}

// unwrapLineReader returns a plain io.Reader from a LineReader that was
// created by wrapping or casting an io.Reader. It should only be called from
// functions that accept an io.Reader argument and then convert it.
func unwrapLineReader(lr LineReader) io.Reader {
	switch r := lr.(type) {
	case io.Reader:
		return r
	case *lineReader:
		return r.r
	default:
		panic(fmt.Sprintf("%T does not implement io.Reader and is not a patch.lineReader", lr))
	}
}

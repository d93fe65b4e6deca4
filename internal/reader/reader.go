// Package reader loads delimited-text and JSON-record raw files into
// typed tables. Row-level problems never abort a read: the offending row
// is dropped and reported as a Diagnostic for the caller to log.
package reader

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Diagnostic records one recovered row-level failure.
type Diagnostic struct {
	Line    int    // 1-based line/record number in the raw file
	Content string // offending raw content, truncated
	Err     string
}

const maxDiagContent = 200

func newDiagnostic(line int, content string, err error) Diagnostic {
	if len(content) > maxDiagContent {
		content = content[:maxDiagContent] + "..."
	}
	return Diagnostic{Line: line, Content: content, Err: err.Error()}
}

// openRaw opens a raw source file, transparently decompressing gzip and
// decoding as UTF-8 with replacement of undecodable byte sequences.
// Encoding problems never fail a read.
func openRaw(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reader: open %s", path)
	}
	var r io.Reader = f
	closer := []io.Closer{f}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, eris.Wrapf(err, "reader: gzip %s", path)
		}
		r = gz
		closer = append(closer, gz)
	}
	r = transform.NewReader(r, unicode.UTF8.NewDecoder())
	return &multiCloser{Reader: r, closers: closer}, nil
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

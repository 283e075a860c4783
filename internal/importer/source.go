package importer

import (
	"io"
	"os"
)

// Source yields a fresh sequential reader over the same bytes each time it is
// opened. The import scans its input twice (count pass, then stream pass), so
// single-use streams must be spooled to disk before they reach the importer.
type Source interface {
	Open() (io.ReadCloser, error)
}

// FileSource reads a file from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

package inputs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"go.uber.org/multierr"
)

const (
	defaultWriteSize = 4 << 20 // 4 MB
	defaultReadSize  = 4 << 20

	// SnappySuffix marks sample files stored as a snappy framed stream.
	SnappySuffix = ".sz"
)

func getBufferedWriter(filename string, fallback io.Writer) (*bufio.Writer, io.Closer, error) {
	// If filename is given, output should go to a file
	if len(filename) > 0 {
		file, err := os.Create(filename)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open file for write %s: %v", filename, err)
		}
		if strings.HasSuffix(filename, SnappySuffix) {
			sw := snappy.NewBufferedWriter(file)
			return bufio.NewWriterSize(sw, defaultWriteSize), multiCloser{sw, file}, nil
		}
		return bufio.NewWriterSize(file, defaultWriteSize), file, nil
	}

	return bufio.NewWriterSize(fallback, defaultWriteSize), nopCloser{}, nil
}

// OpenInput opens filename for reading, or returns fallback when filename is
// empty or "-". Files ending in SnappySuffix are decompressed on the fly.
func OpenInput(filename string, fallback io.Reader) (io.ReadCloser, error) {
	if filename == "" || filename == "-" {
		return io.NopCloser(bufio.NewReaderSize(fallback, defaultReadSize)), nil
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open file for read %s: %v", filename, err)
	}
	var r io.Reader = file
	if strings.HasSuffix(filename, SnappySuffix) {
		r = snappy.NewReader(file)
	}
	return readCloser{Reader: bufio.NewReaderSize(r, defaultReadSize), Closer: file}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// multiCloser closes every closer in order.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var err error
	for _, c := range m {
		err = multierr.Append(err, c.Close())
	}
	return err
}

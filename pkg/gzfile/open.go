package gzfile

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// multiReadCloser closes every underlying closer, first error wins.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open returns a reader over path, decompressing gzip when the file starts
// with the gzip magic number or carries a .gz suffix. "-" reads stdin.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var sig [2]byte
	n, _ := io.ReadFull(fh, sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, err
	}

	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}

// gzipWriteCloser buffers writes into a gzip stream on top of a file.
type gzipWriteCloser struct {
	bw *bufio.Writer
	gw *gzip.Writer
	fh *os.File
}

func (w *gzipWriteCloser) Write(p []byte) (int, error) {
	return w.bw.Write(p)
}

// Close flushes the buffer, terminates the gzip stream and closes the file.
func (w *gzipWriteCloser) Close() error {
	err := w.bw.Flush()
	if cerr := w.gw.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if cerr := w.fh.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Create creates (or truncates) path and returns a gzip-compressing writer.
func Create(path string) (io.WriteCloser, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	gw := gzip.NewWriter(fh)
	return &gzipWriteCloser{
		bw: bufio.NewWriterSize(gw, 256<<10),
		gw: gw,
		fh: fh,
	}, nil
}

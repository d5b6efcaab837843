package compression

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

func newZSTDReader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

func newZSTDWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

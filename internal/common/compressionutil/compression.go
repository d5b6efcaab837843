package compression

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
)

// Format identifies a stream compression format
type Format string

const (
	None  Format = ""
	GZIP  Format = "gzip"
	BZIP2 Format = "bzip2"
	XZ    Format = "xz"
	ZSTD  Format = "zstd"
)

var magicNumbers = map[Format][]byte{
	GZIP:  {0x1F, 0x8B},
	BZIP2: {0x42, 0x5A, 0x68},
	XZ:    {0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00},
	ZSTD:  {0x28, 0xB5, 0x2F, 0xFD},
}

var suffixes = map[string]Format{
	".gz":  GZIP,
	".bz2": BZIP2,
	".xz":  XZ,
	".zst": ZSTD,
}

// Suffix returns the file suffix conventionally used for a format
func (f Format) Suffix() string {
	for suffix, format := range suffixes {
		if format == f {
			return suffix
		}
	}
	return ""
}

// ParseFormat converts a configuration string into a Format
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case None, "none":
		return None, nil
	case GZIP, "gz":
		return GZIP, nil
	case BZIP2, "bz2":
		return BZIP2, nil
	case XZ:
		return XZ, nil
	case ZSTD, "zst":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, name)
	}
}

// SplitPath separates a trailing compression suffix from a path.
// "flow.yxmd.gz" yields ("flow.yxmd", GZIP); "flow.yxmd" yields ("flow.yxmd", None).
func SplitPath(path string) (string, Format) {
	ext := strings.ToLower(filepath.Ext(path))
	if format, ok := suffixes[ext]; ok {
		return path[:len(path)-len(ext)], format
	}
	return path, None
}

// DetectFormat determines the compression format using magic numbers and the file extension
func DetectFormat(path string) (Format, error) {
	header, err := fsutil.ReadFileHeader(path, 6)
	if err != nil {
		return None, err
	}

	for format, magic := range magicNumbers {
		if bytes.HasPrefix(header, magic) {
			return format, nil
		}
	}

	// Extension is only trusted when the header gave no answer
	_, format := SplitPath(path)
	return format, nil
}

// NewReader wraps r with a decompressor for the given format
func NewReader(r io.Reader, format Format) (io.ReadCloser, error) {
	switch format {
	case None:
		return io.NopCloser(r), nil
	case GZIP:
		return newGZIPReader(r)
	case BZIP2:
		return newBZIP2Reader(r)
	case XZ:
		return newXZReader(r)
	case ZSTD:
		return newZSTDReader(r)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}
}

// NewWriter wraps w with a compressor for the given format
func NewWriter(w io.Writer, format Format) (io.WriteCloser, error) {
	switch format {
	case None:
		return nopWriteCloser{w}, nil
	case GZIP:
		return newGZIPWriter(w)
	case BZIP2:
		return newBZIP2Writer(w)
	case XZ:
		return newXZWriter(w)
	case ZSTD:
		return newZSTDWriter(w)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}
}

// ReadFile reads a file, transparently decompressing it when its header or
// suffix identifies a supported compression format
func ReadFile(path string) ([]byte, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileReadError, err.Error())
	}
	defer file.Close()

	reader, err := NewReader(file, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrDecompressionFailed, err.Error())
	}

	data, err := fsutil.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrDecompressionFailed, err.Error())
	}
	return data, nil
}

// Compress returns data compressed with the given format
func Compress(data []byte, format Format) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := NewWriter(&buf, format)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("%w: %s", errors.ErrCompressionFailed, err.Error())
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrCompressionFailed, err.Error())
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to path, compressing it when the path carries a
// compression suffix
func WriteFile(path string, data []byte, perm os.FileMode) error {
	_, format := SplitPath(path)
	if format != None {
		compressed, err := Compress(data, format)
		if err != nil {
			return err
		}
		data = compressed
	}

	if err := fsutil.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

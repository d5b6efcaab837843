package errors

import (
	"errors"
)

var (
	// General Errors
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrPathNotAccessible = errors.New("path is not accessible")

	// Document Errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParse             = errors.New("parse error")
	ErrEmptyDocument     = errors.New("document has no root element")
	ErrUnknownSchema     = errors.New("unknown workflow schema")

	// Conversion Errors
	ErrSerializeFailed   = errors.New("failed to serialize document")
	ErrConversionAborted = errors.New("conversion aborted")

	// Validation Errors
	ErrValidationFailed = errors.New("validation failed")

	// Compression Errors
	ErrUnsupportedCompression = errors.New("unsupported compression format")
	ErrDecompressionFailed    = errors.New("decompression failed")
	ErrCompressionFailed      = errors.New("compression failed")

	// File & Directory Errors
	ErrFileNotFound   = errors.New("file not found")
	ErrFileReadError  = errors.New("error reading file")
	ErrFileWriteError = errors.New("error writing to file")

	// Hash Errors
	ErrInvalidHasher = errors.New("invalid hasher")

	// Batch Errors
	ErrUnknownOperation = errors.New("unknown batch operation")
	ErrNoInputFiles     = errors.New("no input files matched")
	ErrBatchFailed      = errors.New("batch run finished with failures")

	// Configuration Errors
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrConfigParseError   = errors.New("error parsing configuration")
	ErrNotInitialized     = errors.New("component not initialized")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

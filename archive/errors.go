package archive

import "errors"

var (
	// ErrCorrupt is returned when the tar stream is malformed or truncated
	ErrCorrupt = errors.New("archive corrupt")
	// ErrDecompression is returned when the gzip stream cannot be decoded
	ErrDecompression = errors.New("decompression failed")
	// ErrCompressionMismatch is returned when compressed data is unpacked as plain tar
	ErrCompressionMismatch = errors.New("archive is compressed")
	// ErrExtract is returned when an entry cannot be written to the filesystem
	ErrExtract = errors.New("extract failed")
)

type decompressError struct {
	err error
}

func (e *decompressError) Error() string { return e.err.Error() }

func (e *decompressError) Unwrap() error { return e.err }

package stowback

import (
	"errors"

	"github.com/sagarc03/stowback/archive"
)

var (
	// ErrNotFound is returned by an ObjectStore when a key does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a request path fails validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrJobsDisabled is returned by job queries when no ledger is configured
	ErrJobsDisabled = errors.New("job ledger disabled")

	// ErrSourceNotFound is returned when the path to archive does not exist
	ErrSourceNotFound = errors.New("source not found")
	// ErrUnsupportedPathType is returned when the path to archive is neither a regular file nor a directory
	ErrUnsupportedPathType = errors.New("unsupported path type")
	// ErrContainerSetupFailed is returned when the storage container could not be created
	ErrContainerSetupFailed = errors.New("container setup failed")
	// ErrPackFailed is returned when the source tree could not be read while archiving
	ErrPackFailed = errors.New("pack failed")
	// ErrUploadFailed is returned when the object store rejects or aborts an upload
	ErrUploadFailed = errors.New("upload failed")

	// ErrObjectNotFound is returned when no archive is stored for the requested path
	ErrObjectNotFound = errors.New("object not found")
	// ErrDownloadFailed is returned when the archive could not be fetched
	ErrDownloadFailed = errors.New("download failed")
	// ErrInvalidMetadata is returned when a stored object lacks usable archive metadata
	ErrInvalidMetadata = errors.New("invalid object metadata")
	// ErrClearFailed is returned when a replace restore could not empty the target directory
	ErrClearFailed = errors.New("clear failed")

	ErrArchiveCorrupt      = archive.ErrCorrupt
	ErrDecompressionFailed = archive.ErrDecompression
	ErrCompressionMismatch = archive.ErrCompressionMismatch
	ErrExtractFailed       = archive.ErrExtract
)

// kinds is ordered: the first matching sentinel names the error.
var kinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidInput, "invalid_path"},
	{ErrSourceNotFound, "source_not_found"},
	{ErrUnsupportedPathType, "unsupported_path_type"},
	{ErrContainerSetupFailed, "container_setup_failed"},
	{ErrPackFailed, "pack_failed"},
	{ErrUploadFailed, "upload_failed"},
	{ErrObjectNotFound, "object_not_found"},
	{ErrDownloadFailed, "download_failed"},
	{ErrInvalidMetadata, "invalid_metadata"},
	{ErrClearFailed, "clear_failed"},
	{ErrCompressionMismatch, "compression_mismatch"},
	{ErrDecompressionFailed, "decompression_failed"},
	{ErrArchiveCorrupt, "archive_corrupt"},
	{ErrExtractFailed, "extract_failed"},
	{ErrJobsDisabled, "jobs_disabled"},
	{ErrNotFound, "not_found"},
}

// ErrorKind returns the stable snake_case name of a job error, or
// "internal_error" when err does not wrap one of the package sentinels.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal_error"
}

// IsMissing reports whether err describes a missing resource rather than a failure.
func IsMissing(err error) bool {
	return errors.Is(err, ErrSourceNotFound) || errors.Is(err, ErrObjectNotFound)
}

// ErrorFromKind is the inverse of ErrorKind. It returns nil for kinds that do
// not name a package sentinel, including "internal_error".
func ErrorFromKind(kind string) error {
	for _, k := range kinds {
		if k.kind == kind {
			return k.err
		}
	}
	return nil
}

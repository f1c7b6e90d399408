package stowback

import (
	"fmt"
	"strconv"
	"strings"
)

// Metadata tag names stored with every archive object.
const (
	MetaIsDirectory  = "isDirectory"
	MetaIsCompressed = "isCompressed"
)

// Content types of stored archives: plain tar, or tar inside gzip.
const (
	ContentTypeTar  = "application/x-tar"
	ContentTypeGTar = "application/x-gtar"
)

// Metadata describes how an archive was produced. Every object written by
// Archive carries both flags; Restore refuses objects that lack them.
type Metadata struct {
	IsDirectory  bool
	IsCompressed bool
}

// ContentType returns the MIME type of the stored archive.
func (m Metadata) ContentType() string {
	if m.IsCompressed {
		return ContentTypeGTar
	}
	return ContentTypeTar
}

// Encode renders the metadata as object-store tags.
func (m Metadata) Encode() map[string]string {
	return map[string]string{
		MetaIsDirectory:  strconv.FormatBool(m.IsDirectory),
		MetaIsCompressed: strconv.FormatBool(m.IsCompressed),
	}
}

// DecodeMetadata parses object-store tags written by Encode.
//
// Tag names are matched case-insensitively since S3 gateways canonicalise
// header names. isDirectory is true only for the exact value "true"; any
// other value means a single-file archive. isCompressed accepts "true" and
// "false" in any case. A missing tag, or an isCompressed value that is not a
// boolean, is reported as ErrInvalidMetadata: guessing would send extraction
// to the wrong directory.
func DecodeMetadata(tags map[string]string) (Metadata, error) {
	dir, ok := lookupTag(tags, MetaIsDirectory)
	if !ok {
		return Metadata{}, fmt.Errorf("decode metadata: %w: missing %s", ErrInvalidMetadata, MetaIsDirectory)
	}

	compressed, ok := lookupTag(tags, MetaIsCompressed)
	if !ok {
		return Metadata{}, fmt.Errorf("decode metadata: %w: missing %s", ErrInvalidMetadata, MetaIsCompressed)
	}

	var m Metadata
	m.IsDirectory = dir == "true"

	switch {
	case strings.EqualFold(compressed, "true"):
		m.IsCompressed = true
	case strings.EqualFold(compressed, "false"):
		m.IsCompressed = false
	default:
		return Metadata{}, fmt.Errorf("decode metadata: %w: %s=%q", ErrInvalidMetadata, MetaIsCompressed, compressed)
	}

	return m, nil
}

func lookupTag(tags map[string]string, name string) (string, bool) {
	if v, ok := tags[name]; ok {
		return v, true
	}
	for k, v := range tags {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

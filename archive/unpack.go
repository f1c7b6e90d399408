package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// UnpackOptions controls how an archive is extracted.
type UnpackOptions struct {
	// Compressed means the stream is gzip data wrapping the tar.
	Compressed bool
	// Only, when set, requires every entry to carry exactly this name.
	// File archives use it to guarantee nothing but the file itself is written.
	Only string
}

// Unpack extracts the tar stream r into targetDir, which must exist.
//
// Existing files at colliding names are overwritten and missing parent
// directories are created. Entries that would land outside targetDir are
// rejected as ErrCorrupt.
func Unpack(ctx context.Context, r io.Reader, targetDir string, opts UnpackOptions) error {
	br := bufio.NewReader(r)
	var src io.Reader = br

	if opts.Compressed {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return fmt.Errorf("unpack: %w: %w", ErrDecompression, err)
		}
		defer func() { _ = zr.Close() }()
		src = &gzipReader{r: zr}
	} else if magic, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(magic, gzipMagic) {
		return fmt.Errorf("unpack: %w: stream starts with a gzip header", ErrCompressionMismatch)
	}

	root, err := os.OpenRoot(targetDir)
	if err != nil {
		return fmt.Errorf("unpack: %w: %w", ErrExtract, err)
	}
	defer func() { _ = root.Close() }()

	body := &eofReader{r: &ctxReader{ctx: ctx, r: src}}
	tr := tar.NewReader(body)
	extracted := 0

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			// tar.Reader reports a stream cut at a header boundary the same
			// way as the end-of-archive marker.
			if body.exhausted {
				return fmt.Errorf("unpack: %w: missing end-of-archive marker", ErrCorrupt)
			}
			break
		}
		if err != nil {
			return readError(err)
		}

		name, ok := entryName(hdr.Name)
		if !ok {
			return fmt.Errorf("unpack: %w: unsafe entry name %q", ErrCorrupt, hdr.Name)
		}
		if name == "." {
			continue
		}
		if opts.Only != "" && name != opts.Only {
			return fmt.Errorf("unpack: %w: unexpected entry %q in single-file archive", ErrCorrupt, hdr.Name)
		}

		if err := extractEntry(root, tr, hdr, name); err != nil {
			return err
		}
		extracted++
	}

	if opts.Only != "" && extracted == 0 {
		return fmt.Errorf("unpack: %w: single-file archive is empty", ErrCorrupt)
	}

	// The gzip trailer is only verified once the decompressor reaches EOF.
	if opts.Compressed {
		if _, err := io.Copy(io.Discard, &ctxReader{ctx: ctx, r: src}); err != nil {
			return readError(err)
		}
	}

	return nil
}

// eofReader records whether the source ran dry while more data was wanted.
type eofReader struct {
	r         io.Reader
	exhausted bool
}

func (e *eofReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if n == 0 && err == io.EOF && len(p) > 0 {
		e.exhausted = true
	}
	return n, err
}

// gzipReader tags failures from the decompressor so they are not mistaken for
// tar corruption.
type gzipReader struct {
	r io.Reader
}

func (g *gzipReader) Read(p []byte) (int, error) {
	n, err := g.r.Read(p)
	if err != nil && err != io.EOF {
		return n, &decompressError{err: err}
	}
	return n, err
}

func readError(err error) error {
	var de *decompressError
	if errors.As(err, &de) {
		return fmt.Errorf("unpack: %w: %w", ErrDecompression, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("unpack: %w", err)
	}
	return fmt.Errorf("unpack: %w: %w", ErrCorrupt, err)
}

func entryName(raw string) (string, bool) {
	if raw == "" || strings.HasPrefix(raw, "/") || strings.Contains(raw, `\`) {
		return "", false
	}

	name := path.Clean(raw)
	if name == "." {
		return name, true
	}

	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", false
	}

	return name, true
}

func extractEntry(root *os.Root, tr *tar.Reader, hdr *tar.Header, name string) error {
	perm := hdr.FileInfo().Mode().Perm()

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := root.MkdirAll(name, perm|0o700); err != nil {
			return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, err)
		}
		return nil

	case tar.TypeReg, tar.TypeRegA: //nolint:staticcheck // old archivers still emit TypeRegA
		if err := prepare(root, name); err != nil {
			return err
		}
		return writeFile(root, tr, hdr, name, perm)

	case tar.TypeSymlink:
		if err := prepare(root, name); err != nil {
			return err
		}
		if err := root.Symlink(hdr.Linkname, name); err != nil {
			return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, err)
		}
		return nil

	default:
		slog.Debug("skipping unsupported archive entry", "name", name, "type", string(hdr.Typeflag))
		return nil
	}
}

// prepare creates the parent of name and removes a non-directory already
// occupying name. The entry is always recreated, never written through, so
// read-only files, symlinks and hard links are replaced.
func prepare(root *os.Root, name string) error {
	if dir := path.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, err)
		}
	}

	info, err := root.Lstat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, err)
	}

	if info.IsDir() {
		return fmt.Errorf("unpack %s: %w: a directory is in the way", name, ErrExtract)
	}

	if err := root.Remove(name); err != nil {
		return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, err)
	}

	return nil
}

func writeFile(root *os.Root, tr *tar.Reader, hdr *tar.Header, name string, perm fs.FileMode) error {
	f, err := root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, err)
	}

	src := &errReader{r: tr}
	_, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	if copyErr != nil {
		if src.err != nil {
			return readError(src.err)
		}
		return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, closeErr)
	}

	// OpenFile's perm is subject to the umask.
	if err := root.Chmod(name, perm); err != nil {
		return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, err)
	}

	mtime := hdr.ModTime
	atime := hdr.AccessTime
	if atime.IsZero() {
		atime = mtime
	}
	if err := root.Chtimes(name, atime, mtime); err != nil {
		return fmt.Errorf("unpack %s: %w: %w", name, ErrExtract, err)
	}

	return nil
}

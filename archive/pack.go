package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Pack returns a tar stream of sourcePath.
//
// When isDirectory is set the whole subtree is archived with names relative
// to sourcePath. Otherwise the archive holds a single entry named after the
// file's base name. Symbolic links inside a tree are stored as links; sockets,
// devices and named pipes are skipped.
func Pack(ctx context.Context, sourcePath string, isDirectory bool) *Stream {
	return newStream(func(w io.Writer) error {
		tw := tar.NewWriter(w)

		var err error
		if isDirectory {
			err = packDir(ctx, tw, sourcePath)
		} else {
			err = packFile(ctx, tw, sourcePath)
		}
		if err != nil {
			return err
		}

		if err := tw.Close(); err != nil {
			return fmt.Errorf("pack %s: close tar: %w", sourcePath, err)
		}
		return nil
	})
}

// Compress returns a gzip stream of src and closes src once it is drained.
func Compress(src io.ReadCloser) *Stream {
	return newStream(func(w io.Writer) error {
		defer func() { _ = src.Close() }()

		gw := gzip.NewWriter(w)
		if _, err := io.Copy(gw, src); err != nil {
			return fmt.Errorf("compress: %w", err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("compress: close gzip: %w", err)
		}
		return nil
	})
}

func packFile(ctx context.Context, tw *tar.Writer, sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("pack %s: %w", sourcePath, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("pack %s: not a regular file", sourcePath)
	}

	return writeEntry(ctx, tw, sourcePath, filepath.Base(sourcePath), info)
}

func packDir(ctx context.Context, tw *tar.Writer, sourcePath string) error {
	// A symlinked directory is archived through its target.
	root, err := filepath.EvalSymlinks(sourcePath)
	if err != nil {
		return fmt.Errorf("pack %s: %w", sourcePath, err)
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("pack %s: %w", p, walkErr)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("pack %s: %w", p, err)
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("pack %s: %w", p, err)
		}

		return writeEntry(ctx, tw, p, filepath.ToSlash(rel), info)
	})
}

func writeEntry(ctx context.Context, tw *tar.Writer, p, name string, info fs.FileInfo) error {
	var link string
	mode := info.Mode()

	switch {
	case mode.IsRegular(), mode.IsDir():
	case mode&fs.ModeSymlink != 0:
		target, err := os.Readlink(p)
		if err != nil {
			return fmt.Errorf("pack %s: %w", p, err)
		}
		link = target
	default:
		slog.Debug("skipping unsupported file type", "path", p, "mode", mode.String())
		return nil
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("pack %s: header: %w", p, err)
	}
	hdr.Name = name
	if mode.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("pack %s: write header: %w", p, err)
	}

	if !mode.IsRegular() {
		return nil
	}

	f, err := os.Open(p) //#nosec G304 -- archiving arbitrary paths is the point
	if err != nil {
		return fmt.Errorf("pack %s: %w", p, err)
	}
	defer func() { _ = f.Close() }()

	// CopyN pins the body to the size announced in the header, so a file
	// growing underneath us cannot overrun its entry.
	if _, err := io.CopyN(tw, &ctxReader{ctx: ctx, r: f}, hdr.Size); err != nil {
		return fmt.Errorf("pack %s: copy: %w", p, err)
	}

	return nil
}

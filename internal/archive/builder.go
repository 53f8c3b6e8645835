// Package archive bundles a set of files into a single compressed archive
// for transfer, and unpacks received archives into a sync root. The format
// is a tar stream wrapped in zstd; member names are forward-slash paths
// relative to the root.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// ProgressFunc receives completion percentage in [0, 100].
type ProgressFunc func(percent float64)

// BuildFull bundles every regular file under root into a compressed
// archive in the temp directory and returns its path and the number of
// members written. progress fires once per file added.
func BuildFull(root string, progress ProgressFunc) (string, int, error) {
	if _, err := os.Stat(root); err != nil {
		return "", 0, fmt.Errorf("archive root: %w", err)
	}

	paths, err := listFiles(root)
	if err != nil {
		return "", 0, fmt.Errorf("list files under %s: %w", root, err)
	}
	return build(root, paths, false, progress)
}

// BuildSelective bundles exactly the given root-relative paths. Paths no
// longer present on disk are silently skipped, not an error. Returns the
// archive path and the number of members actually written.
func BuildSelective(root string, paths []string, progress ProgressFunc) (string, int, error) {
	return build(root, paths, true, progress)
}

func build(root string, paths []string, skipMissing bool, progress ProgressFunc) (string, int, error) {
	archivePath := filepath.Join(os.TempDir(), "lansync_"+uuid.NewString()+".tar.zst")

	f, err := os.Create(archivePath)
	if err != nil {
		return "", 0, fmt.Errorf("create archive: %w", err)
	}

	written, err := writeMembers(f, root, paths, skipMissing, progress)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(archivePath)
		return "", 0, err
	}
	return archivePath, written, nil
}

func writeMembers(w io.Writer, root string, paths []string, skipMissing bool, progress ProgressFunc) (int, error) {
	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return 0, fmt.Errorf("zstd encoder: %w", err)
	}
	tw := tar.NewWriter(enc)

	written := 0
	total := len(paths)
	for i, rel := range paths {
		err := addMember(tw, root, rel)
		if err != nil {
			if skipMissing && os.IsNotExist(err) {
				continue
			}
			tw.Close()
			enc.Close()
			return 0, fmt.Errorf("add %s: %w", rel, err)
		}
		written++
		if progress != nil {
			progress(float64(i+1) / float64(total) * 100)
		}
	}

	if err := tw.Close(); err != nil {
		enc.Close()
		return 0, fmt.Errorf("close tar: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("close zstd: %w", err)
	}
	return written, nil
}

func addMember(tw *tar.Writer, root, rel string) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", rel)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)
	// Manifests compare mtimes at whole-second precision; rounding here
	// would make an extracted copy look one second newer than its source.
	hdr.ModTime = info.ModTime().Truncate(time.Second)

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	f, err := os.Open(full)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return err
	}
	return nil
}

// listFiles returns the root-relative forward-slash paths of every regular
// file under root, in walk order.
func listFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

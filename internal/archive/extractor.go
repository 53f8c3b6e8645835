package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// backupTimeLayout names the sibling backup directory created before a
// full-tree extraction overwrites root.
const backupTimeLayout = "20060102_150405"

// ErrUnsafePath is returned when an archive member name is absolute or
// escapes the extraction root via parent segments.
var ErrUnsafePath = errors.New("archive member escapes extraction root")

// Extract unpacks the archive at archivePath under root as a full-tree
// replacement. If root already exists, its tree is first copied to a
// sibling "<root>_backup_<timestamp>" directory — the only safety net
// against a bad incoming snapshot — and then cleared, so files absent
// from the archive do not survive the sync. Returns the backup path and
// the number of members extracted. progress fires once per member.
func Extract(archivePath, root string, progress ProgressFunc) (string, int, error) {
	backupPath := ""
	if _, err := os.Stat(root); err == nil {
		backupPath = root + "_backup_" + time.Now().Format(backupTimeLayout)
		if err := copyTree(root, backupPath); err != nil {
			return "", 0, fmt.Errorf("backup %s: %w", root, err)
		}
		// Replace, not merge: the archive is the entire new tree.
		if err := os.RemoveAll(root); err != nil {
			return backupPath, 0, fmt.Errorf("clear %s: %w", root, err)
		}
	}

	extracted, err := ExtractInto(archivePath, root, progress)
	return backupPath, extracted, err
}

// ExtractInto unpacks the archive under root without taking a backup or
// touching files the archive does not name. Used for incremental imports
// where the archive holds a partial file set. Returns the number of
// members extracted.
func ExtractInto(archivePath, root string, progress ProgressFunc) (int, error) {
	total, err := countMembers(archivePath)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("zstd decoder: %w", err)
	}
	defer dec.Close()

	if err := os.MkdirAll(root, 0o755); err != nil {
		return 0, fmt.Errorf("create root: %w", err)
	}

	tr := tar.NewReader(dec)
	extracted := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return extracted, fmt.Errorf("read archive: %w", err)
		}

		if err := extractMember(tr, root, hdr); err != nil {
			return extracted, err
		}
		extracted++
		if progress != nil {
			progress(float64(extracted) / float64(total) * 100)
		}
	}

	if progress != nil && total == 0 {
		progress(100)
	}
	return extracted, nil
}

func extractMember(tr *tar.Reader, root string, hdr *tar.Header) error {
	dst, err := memberPath(root, hdr.Name)
	if err != nil {
		return err
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(dst, 0o755)
	case tar.TypeReg:
		// fall through
	default:
		return nil // non-regular members are not produced by the builder
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", hdr.Name, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fs.FileMode(hdr.Mode)&0o777)
	if err != nil {
		return fmt.Errorf("create %s: %w", hdr.Name, err)
	}
	if _, err := io.Copy(out, tr); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", hdr.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", hdr.Name, err)
	}

	// Preserve the sender's mtime so peers agree on which copy is newer.
	if !hdr.ModTime.IsZero() {
		if err := os.Chtimes(dst, hdr.ModTime, hdr.ModTime); err != nil {
			return fmt.Errorf("set mtime %s: %w", hdr.Name, err)
		}
	}
	return nil
}

// memberPath resolves an archive member name under root, rejecting names
// that are absolute or escape the root through parent segments.
func memberPath(root, name string) (string, error) {
	clean := path.Clean(name)
	if clean == "" || clean == "." ||
		path.IsAbs(clean) || filepath.IsAbs(filepath.FromSlash(name)) ||
		clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return filepath.Join(root, filepath.FromSlash(clean)), nil
}

func countMembers(archivePath string) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("zstd decoder: %w", err)
	}
	defer dec.Close()

	tr := tar.NewReader(dec)
	count := 0
	for {
		if _, err := tr.Next(); err != nil {
			if err == io.EOF {
				return count, nil
			}
			return 0, fmt.Errorf("read archive: %w", err)
		}
		count++
	}
}

// copyTree replicates src under dst, preserving file modes and mtimes so
// the backup's manifest matches the original tree's.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if err := copyFile(p, target, info); err != nil {
			return err
		}
		return os.Chtimes(target, info.ModTime(), info.ModTime())
	})
}

func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

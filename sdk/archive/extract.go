package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/mholt/archives"

	"github.com/appfy/gaesdk/internal"
	"github.com/appfy/gaesdk/internal/log"
)

// Extract unpacks the archive into destination, first removing destination entirely when clear is
// set. It returns every extracted regular file and symlink, relative to destination, mapped to its
// xxh64 digest (empty for symlinks).
func Extract(ctx context.Context, archivePath, destination string, clear bool) (map[string]string, error) {
	destDir, err := filepath.Abs(destination)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve destination %q: %w", destination, err)
	}

	if clear {
		log.FromContext(ctx).WithFields("destination", destDir).Debug("clearing destination")
		if err := os.RemoveAll(destDir); err != nil {
			return nil, fmt.Errorf("unable to clear destination %q: %w", destDir, err)
		}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create destination %q: %w", destDir, err)
	}

	files := make(map[string]string)
	if err := extractToDir(ctx, archivePath, destDir, files); err != nil {
		return nil, err
	}

	log.FromContext(ctx).WithFields("destination", destDir, "files", len(files)).Trace("extracted archive")

	return files, nil
}

// extractToDir extracts an archive file to the destination directory
func extractToDir(ctx context.Context, archivePath, destDir string, files map[string]string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("unable to open archive: %w", err)
	}
	defer file.Close()

	format, _, err := archives.Identify(ctx, archivePath, file)
	if err != nil {
		return fmt.Errorf("unable to identify archive format: %w", err)
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return fmt.Errorf("format %T does not support extraction", format)
	}

	// zip extraction needs random access, so hand over the file itself rather than the identify stream
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("unable to rewind archive: %w", err)
	}

	return extractor.Extract(ctx, file, func(ctx context.Context, f archives.FileInfo) error {
		// traversal (../, absolute paths) is sanitized to stay within destDir
		destPath, err := securejoin.SecureJoin(destDir, f.NameInArchive)
		if err != nil {
			return fmt.Errorf("invalid path in archive %q: %w", f.NameInArchive, err)
		}

		relPath, err := filepath.Rel(destDir, destPath)
		if err != nil {
			return err
		}

		if f.IsDir() {
			return os.MkdirAll(destPath, dirMode(f.Mode()))
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}

		if f.LinkTarget != "" {
			if escapes(destDir, destPath, f.LinkTarget) {
				return fmt.Errorf("symlink escapes extraction directory: %s -> %s", f.NameInArchive, f.LinkTarget)
			}
			if err := os.Symlink(f.LinkTarget, destPath); err != nil {
				return err
			}
			files[filepath.ToSlash(relPath)] = ""
			return nil
		}

		digest, err := writeFile(f, destPath)
		if err != nil {
			return fmt.Errorf("unable to extract %q: %w", f.NameInArchive, err)
		}
		files[filepath.ToSlash(relPath)] = digest
		return nil
	})
}

func writeFile(f archives.FileInfo, destPath string) (string, error) {
	srcFile, err := f.Open()
	if err != nil {
		return "", err
	}
	defer srcFile.Close()

	destFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode(f.Mode()))
	if err != nil {
		return "", err
	}
	defer destFile.Close()

	digester := internal.NewDigester()
	if _, err := io.Copy(io.MultiWriter(destFile, digester), srcFile); err != nil {
		return "", err
	}

	return digester.Digests()[internal.XXH64Algorithm], nil
}

func escapes(destDir, linkPath, target string) bool {
	if filepath.IsAbs(target) {
		return true
	}
	resolved := filepath.Join(filepath.Dir(linkPath), target)
	rel, err := filepath.Rel(destDir, resolved)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileMode(m os.FileMode) os.FileMode {
	if m.Perm() == 0 {
		return 0644
	}
	return m.Perm()
}

func dirMode(m os.FileMode) os.FileMode {
	if m.Perm() == 0 {
		return 0755
	}
	return m.Perm() | 0700
}

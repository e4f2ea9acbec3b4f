package archive

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/scylladb/go-set/strset"

	"github.com/appfy/gaesdk"
	"github.com/appfy/gaesdk/internal"
	"github.com/appfy/gaesdk/internal/log"
)

var archiveMimeTypes = strset.New(
	// archive only
	"application/x-archive",
	"application/x-cpio",
	"application/x-tar",
	// compression only
	"application/x-bzip2",
	"application/gzip",
	"application/x-lzip",
	"application/x-xz",
	"application/zstd",
	// archiving and compression
	"application/x-7z-compressed",
	"application/x-rar-compressed",
	"application/java-archive",
	"application/jar",
	"application/zip",
)

var _ gaesdk.ArchiveInstaller = (*Installer)(nil)

type InstallerParameters struct {
	// DownloadDirectory is where fetched archives are written. When empty, a temporary directory is
	// used and removed once extraction finishes.
	DownloadDirectory string `json:"download-directory" yaml:"download-directory" mapstructure:"download-directory"`

	// HashName names the local archive after the xxh64 digest of its URL instead of the URL basename.
	HashName bool `json:"hash-name" yaml:"hash-name" mapstructure:"hash-name"`
}

type Installer struct {
	config InstallerParameters
}

func NewInstaller(cfg InstallerParameters) Installer {
	return Installer{
		config: cfg,
	}
}

// FetchAndExtract downloads the archive at the given URL and extracts it into destination.
func (i Installer) FetchAndExtract(ctx context.Context, archiveURL, destination string, clearDestination bool) (*gaesdk.Installation, error) {
	downloadDir := i.config.DownloadDirectory
	if downloadDir == "" {
		tmpdir, err := os.MkdirTemp("", "gaesdk-download-")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer func() {
			if err := os.RemoveAll(tmpdir); err != nil {
				log.FromContext(ctx).WithFields("dir", tmpdir).Warnf("failed to remove temp directory: %v", err)
			}
		}()
		downloadDir = tmpdir
	}

	archivePath, digests, err := i.fetch(ctx, archiveURL, downloadDir)
	if err != nil {
		return nil, err
	}

	internal.MonitorFromContext(ctx).SetStage(internal.StageExtracting)

	files, err := Extract(ctx, archivePath, destination, clearDestination)
	if err != nil {
		return nil, err
	}

	absDest, err := filepath.Abs(destination)
	if err != nil {
		return nil, err
	}

	return &gaesdk.Installation{
		URL:            archiveURL,
		Destination:    absDest,
		ArchiveDigests: digests,
		Files:          files,
	}, nil
}

// Fetch downloads the archive at the given URL into the configured download directory (or a new
// temporary directory) and returns the local path. The caller owns the returned file.
func (i Installer) Fetch(ctx context.Context, archiveURL string) (string, error) {
	downloadDir := i.config.DownloadDirectory
	if downloadDir == "" {
		tmpdir, err := os.MkdirTemp("", "gaesdk-download-")
		if err != nil {
			return "", fmt.Errorf("failed to create temp directory: %w", err)
		}
		downloadDir = tmpdir
	}

	archivePath, _, err := i.fetch(ctx, archiveURL, downloadDir)
	return archivePath, err
}

func (i Installer) fetch(ctx context.Context, archiveURL, downloadDir string) (string, map[string]string, error) {
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return "", nil, fmt.Errorf("unable to create download directory %q: %w", downloadDir, err)
	}

	archivePath := filepath.Join(downloadDir, i.archiveName(archiveURL))

	log.FromContext(ctx).WithFields("url", archiveURL, "destination", archivePath).Debug("downloading archive")

	monitor := internal.MonitorFromContext(ctx)
	monitor.SetStage(internal.StageDownloading)

	var digests map[string]string
	var err error
	if monitor != nil {
		digests, err = internal.DownloadFile(ctx, archiveURL, archivePath, monitor.Manual)
	} else {
		digests, err = internal.DownloadFile(ctx, archiveURL, archivePath, nil)
	}
	if err != nil {
		return "", nil, err
	}

	if err := requireArchive(archivePath); err != nil {
		return "", nil, err
	}

	return archivePath, digests, nil
}

func (i Installer) archiveName(archiveURL string) string {
	if i.config.HashName {
		return internal.XXH64String(archiveURL)
	}

	name := archiveURL
	if u, err := url.Parse(archiveURL); err == nil {
		name = u.Path
	}
	name = path.Base(name)
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}

func requireArchive(p string) error {
	mimeType, err := mimetype.DetectFile(p)
	if err != nil {
		return fmt.Errorf("unable to detect mime type of %q: %w", p, err)
	}

	tyName := strings.Split(mimeType.String(), ";")[0]
	if !archiveMimeTypes.Has(tyName) {
		return fmt.Errorf("downloaded file %q is not an archive (detected %s)", p, tyName)
	}
	return nil
}

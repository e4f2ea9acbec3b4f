package gaesdk

import "context"

// VersionResolver finds the download location of the latest SDK release.
type VersionResolver interface {
	ResolveLatestURL(ctx context.Context) (string, error)
}

// ReleaseResolver additionally exposes the raw release identifier behind the latest URL.
type ReleaseResolver interface {
	VersionResolver
	ResolveRelease(ctx context.Context) (string, error)
}

// ArchiveInstaller fetches an archive and extracts it into a destination directory.
type ArchiveInstaller interface {
	FetchAndExtract(ctx context.Context, url, destination string, clearDestination bool) (*Installation, error)
}

// Installation is the result of a successful fetch and extract.
type Installation struct {
	URL         string
	Destination string

	// ArchiveDigests are the digests of the fetched archive, keyed by algorithm.
	ArchiveDigests map[string]string

	// Files maps each extracted regular file (relative to Destination) to its xxh64 digest.
	Files map[string]string
}

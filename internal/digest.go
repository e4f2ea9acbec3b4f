package internal

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/OneOfOne/xxhash"
)

const (
	SHA256Algorithm = "sha256"
	XXH64Algorithm  = "xxh64"
)

// Digester computes sha256 and xxh64 digests of everything written to it.
type Digester struct {
	sha256 hash.Hash
	xxh64  hash.Hash
	w      io.Writer
}

func NewDigester() *Digester {
	d := &Digester{
		sha256: sha256.New(),
		xxh64:  xxhash.New64(),
	}
	d.w = io.MultiWriter(d.sha256, d.xxh64)
	return d
}

func (d *Digester) Write(p []byte) (int, error) {
	return d.w.Write(p)
}

// Digests returns the hex digests keyed by algorithm name.
func (d *Digester) Digests() map[string]string {
	return map[string]string{
		SHA256Algorithm: fmt.Sprintf("%x", d.sha256.Sum(nil)),
		XXH64Algorithm:  fmt.Sprintf("%x", d.xxh64.Sum(nil)),
	}
}

func XXH64File(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()

	h := xxhash.New64()
	if _, err := io.Copy(h, fh); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func XXH64String(s string) string {
	return fmt.Sprintf("%016x", xxhash.ChecksumString64(s))
}

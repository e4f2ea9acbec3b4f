package gaesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/appfy/gaesdk/internal"
	"github.com/appfy/gaesdk/internal/log"
)

const stateFileName = ".gaesdk.state.json"

var ErrNotInstalled = errors.New("part not installed")

type ErrDigestMismatch struct {
	Path      string
	Algorithm string
	Expected  string
	Actual    string
}

func (e *ErrDigestMismatch) Error() string {
	return fmt.Sprintf("digest mismatch: path=%q algorithm=%q expected=%q actual=%q", e.Path, e.Algorithm, e.Expected, e.Actual)
}

type ErrMissingFile struct {
	Path string
}

func (e *ErrMissingFile) Error() string {
	return fmt.Sprintf("installed file missing: %q", e.Path)
}

// Store records what each build part installed so that later runs (and the build tool) can tell
// which files belong to a part.
type Store struct {
	root    string
	entries []StoreEntry
	lock    *sync.RWMutex
}

type state struct {
	Entries []StoreEntry `json:"entries"`
}

type StoreEntry struct {
	Name           string            `json:"name"`
	Release        string            `json:"release,omitempty"`
	URL            string            `json:"url"`
	Destination    string            `json:"destination"`
	ConfigDigest   string            `json:"configDigest"`
	ArchiveDigests map[string]string `json:"archiveDigests"`
	Files          map[string]string `json:"files"`
}

// Paths returns the absolute paths of every installed file, sorted.
func (e StoreEntry) Paths() []string {
	paths := make([]string, 0, len(e.Files))
	for p := range e.Files {
		paths = append(paths, filepath.Join(e.Destination, p))
	}
	sort.Strings(paths)
	return paths
}

func NewStore(root string) (*Store, error) {
	s := &Store{
		root:    root,
		entries: []StoreEntry{},
		lock:    &sync.RWMutex{},
	}

	return s, s.loadState()
}

// Get returns the store entry for the given part name.
func (s *Store) Get(name string) (*StoreEntry, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, en := range s.entries {
		if en.Name == name {
			entry := en
			return &entry, nil
		}
	}
	return nil, ErrNotInstalled
}

func (s *Store) Entries() (entries []StoreEntry) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append(entries, s.entries...)
}

// Record adds or replaces the entry for the given part from a completed installation.
func (s *Store) Record(name, release, configDigest string, inst *Installation) error {
	if inst == nil {
		return fmt.Errorf("no installation to record for part %q", name)
	}

	log.WithFields("part", name, "destination", inst.Destination).Trace("recording installation")

	if err := s.loadState(); err != nil {
		return err
	}

	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		if err := os.MkdirAll(s.root, 0755); err != nil {
			return err
		}
	}

	entry := StoreEntry{
		Name:           name,
		Release:        release,
		URL:            inst.URL,
		Destination:    inst.Destination,
		ConfigDigest:   configDigest,
		ArchiveDigests: inst.ArchiveDigests,
		Files:          inst.Files,
	}

	s.lock.Lock()
	replaced := false
	for i, en := range s.entries {
		if en.Name == name {
			log.WithFields("part", name, "files", len(entry.Files)).Trace("replacing existing store entry")
			s.entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		log.WithFields("part", name, "files", len(entry.Files)).Trace("adding new store entry")
		s.entries = append(s.entries, entry)
	}
	s.lock.Unlock()

	return s.saveState()
}

func (s *Store) stateFilePath() string {
	return filepath.Join(s.root, stateFileName)
}

func (s *Store) loadState() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	stateFilePath := s.stateFilePath()
	log.WithFields("path", stateFilePath).Trace("loading state")

	if _, err := os.Stat(stateFilePath); os.IsNotExist(err) {
		return nil
	}

	stateFile, err := os.Open(stateFilePath)
	if err != nil {
		return err
	}
	defer stateFile.Close()

	var encodeState state

	decoder := json.NewDecoder(stateFile)
	if err := decoder.Decode(&encodeState); err != nil {
		return fmt.Errorf("unable to read state file %q: %w", stateFilePath, err)
	}

	s.entries = append([]StoreEntry{}, encodeState.Entries...)

	return nil
}

func (s *Store) saveState() error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stateFilePath := s.stateFilePath()
	log.WithFields("path", stateFilePath).Trace("saving state")

	stateFile, err := os.OpenFile(stateFilePath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer stateFile.Close()

	var encodeState state

	for _, entry := range s.entries {
		// a destination removed out from under us is no longer an installation
		if _, err := os.Stat(entry.Destination); os.IsNotExist(err) {
			log.WithFields("part", entry.Name, "destination", entry.Destination).Trace("destination missing, removing from store")
			continue
		}

		encodeState.Entries = append(encodeState.Entries, entry)
	}

	encoder := json.NewEncoder(stateFile)
	encoder.SetIndent("", "  ")

	return encoder.Encode(encodeState)
}

// Verify checks that every recorded file is still present. With verifyDigests each file is also
// re-hashed and compared with the recorded xxh64 digest.
func (e *StoreEntry) Verify(verifyDigests bool) error {
	if _, err := os.Stat(e.Destination); err != nil {
		return err
	}

	for _, name := range sortedKeys(e.Files) {
		path := filepath.Join(e.Destination, name)
		if _, err := os.Lstat(path); err != nil {
			if os.IsNotExist(err) {
				return &ErrMissingFile{Path: path}
			}
			return err
		}

		if !verifyDigests {
			continue
		}

		expect := e.Files[name]
		if expect == "" {
			// symlinks and other non-regular entries carry no digest
			continue
		}

		actual, err := internal.XXH64File(path)
		if err != nil {
			return fmt.Errorf("failed to calculate xxh64 of %q: %w", path, err)
		}

		if expect != actual {
			return &ErrDigestMismatch{
				Path:      path,
				Algorithm: internal.XXH64Algorithm,
				Expected:  expect,
				Actual:    actual,
			}
		}
	}

	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

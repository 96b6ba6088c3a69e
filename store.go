package sdk

import (
	"os"
	"path/filepath"
	"sync"
)

// StorePath is the scope the token bundle is persisted under. It mirrors
// the root-path scoping of the reference cookie store.
const StorePath = "/"

// TokenStore persists the serialized token bundle between sessions. The
// store is the source of truth across process restarts; the in-memory
// bundle is the source of truth within one.
type TokenStore interface {
	// Read returns the stored blob, ok reports whether one exists.
	Read() (value string, ok bool)
	// Write persists the blob under the given scope path.
	Write(value, path string) error
}

// MemoryStore keeps the token blob in process memory. It backs tests and
// callers that do not want credentials on disk.
type MemoryStore struct {
	mu    sync.Mutex
	value string
	set   bool
	path  string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Read() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set
}

func (s *MemoryStore) Write(value, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.set = true
	s.path = path
	return nil
}

// FileStore persists the token blob to a single file, the Go-native
// analog of the reference UI's session cookie.
type FileStore struct {
	mu   sync.Mutex
	name string
}

func NewFileStore(name string) *FileStore {
	return &FileStore{name: name}
}

func (s *FileStore) Read() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.name)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// Write persists the blob with owner-only permissions. The scope path is
// meaningful for cookie-backed stores only and is ignored here.
func (s *FileStore) Write(value, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir := filepath.Dir(s.name); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.name, []byte(value), 0o600)
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// FileStoreVersion is the current schema version of the answers file.
const FileStoreVersion = 1

// fileRecord is one session in the answers file.
type fileRecord struct {
	Answers   []string  `json:"answers"`
	UpdatedAt time.Time `json:"updated_at"`
}

// fileData is the serialized form of the answers file.
type fileData struct {
	Version  int                    `json:"version"`
	Sessions map[string]*fileRecord `json:"sessions"`
}

// File persists all sessions in one JSON document.
//
// Each operation takes a cross-process advisory lockfile, reads the document,
// applies the change and writes it back through a temp-file rename, so
// several CLI processes can share one file.
type File struct {
	mu       sync.Mutex
	filePath string
}

// NewFile returns a store backed by filePath.
// If filePath is empty, it defaults to ~/.sequestra/answers.json.
func NewFile(filePath string) (*File, error) {
	if filePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determining home directory: %w", err)
		}
		filePath = filepath.Join(homeDir, ".sequestra", "answers.json")
	}
	return &File{filePath: filePath}, nil
}

// FilePath returns the path of the answers file.
func (s *File) FilePath() string {
	return s.filePath
}

// Save replaces the answers of session id.
func (s *File) Save(ctx context.Context, id string, answers []string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.update(ctx, func(data *fileData) {
		data.Sessions[id] = &fileRecord{
			Answers:   cloneAnswers(answers),
			UpdatedAt: time.Now().UTC(),
		}
	})
}

// Load returns the answers of session id.
func (s *File) Load(ctx context.Context, id string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	unlock, err := s.acquireFileLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	rec, ok := data.Sessions[id]
	if !ok || rec == nil {
		return nil, ErrNotFound
	}
	return cloneAnswers(rec.Answers), nil
}

// Clear removes session id from the file.
func (s *File) Clear(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.update(ctx, func(data *fileData) {
		delete(data.Sessions, id)
	})
}

// Sessions returns the update time of every stored session.
func (s *File) Sessions(ctx context.Context) (map[string]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock, err := s.acquireFileLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(data.Sessions))
	for id, rec := range data.Sessions {
		if rec != nil {
			out[id] = rec.UpdatedAt
		}
	}
	return out, nil
}

func (s *File) update(ctx context.Context, mutate func(*fileData)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock, err := s.acquireFileLock()
	if err != nil {
		return fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	mutate(data)
	return s.write(data)
}

// read loads the answers file. A missing file is an empty store; a corrupted
// file is an error, never silently replaced.
func (s *File) read() (*fileData, error) {
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileData{Version: FileStoreVersion, Sessions: make(map[string]*fileRecord)}, nil
		}
		return nil, fmt.Errorf("reading answers file: %w", err)
	}

	var data fileData
	if unmarshalErr := json.Unmarshal(raw, &data); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreCorrupted, unmarshalErr)
	}
	if data.Version != FileStoreVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (expected %d)",
			ErrStoreCorrupted, data.Version, FileStoreVersion)
	}
	if data.Sessions == nil {
		data.Sessions = make(map[string]*fileRecord)
	}
	return &data, nil
}

// write stores data atomically via a temp file.
func (s *File) write(data *fileData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling answers: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(s.filePath), 0o750); mkdirErr != nil {
		return fmt.Errorf("creating answers directory: %w", mkdirErr)
	}

	tmpPath := s.filePath + ".tmp"
	if writeErr := os.WriteFile(tmpPath, raw, 0o600); writeErr != nil {
		return fmt.Errorf("writing answers temp file: %w", writeErr)
	}
	if renameErr := os.Rename(tmpPath, s.filePath); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming answers temp file: %w", renameErr)
	}
	return nil
}

func (s *File) lockFilePath() string {
	return s.filePath + ".lock"
}

// acquireFileLock acquires a cross-process advisory lockfile.
// Returns a cleanup function that releases the lock.
func (s *File) acquireFileLock() (func(), error) {
	lockPath := s.lockFilePath()

	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	const maxRetries = 10
	const retryDelay = 100 * time.Millisecond
	const staleLockAge = 30 * time.Second

	for range maxRetries {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			// PID for stale lock detection
			_, _ = fmt.Fprintf(f, "%d", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}

		if removeStaleLock(lockPath, staleLockAge) {
			continue
		}
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("could not acquire lock on %s after retries", lockPath)
}

// removeStaleLock removes a lock older than staleLockAge whose owner is gone.
// Returns true if the lock was removed.
func removeStaleLock(lockPath string, staleLockAge time.Duration) bool {
	info, statErr := os.Stat(lockPath)
	if statErr != nil || time.Since(info.ModTime()) <= staleLockAge {
		return false
	}
	if isLockHeldByLiveProcess(lockPath) {
		return false
	}
	_ = os.Remove(lockPath)
	return true
}

func isLockHeldByLiveProcess(lockPath string) bool {
	pidData, readErr := os.ReadFile(lockPath)
	if readErr != nil || len(pidData) == 0 {
		return false
	}
	var pid int
	if _, scanErr := fmt.Sscanf(string(pidData), "%d", &pid); scanErr != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 tests existence without delivering a signal
	return proc.Signal(syscall.Signal(0)) == nil
}

package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Transcript implements ports.TranscriptStore as a JSON Lines file.
// One entry per line, appended with O_APPEND and fsynced.
type Transcript struct {
	Path       string
	maxEntries int
	mu         sync.Mutex
}

// Option configures the file transcript.
type Option func(*Transcript)

// WithMaxEntries compacts the file to the newest n entries after each append.
func WithMaxEntries(n int) Option {
	return func(t *Transcript) {
		t.maxEntries = n
	}
}

// New creates a file transcript at path.
// If path is empty, it defaults to ".switchboard/transcript.jsonl".
func New(path string, opts ...Option) *Transcript {
	if path == "" {
		path = filepath.Join(".switchboard", "transcript.jsonl")
	}
	t := &Transcript{Path: path}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append writes the entries at the end of the file.
func (t *Transcript) Append(ctx context.Context, entries ...domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(t.Path), 0755); err != nil {
		return fmt.Errorf("failed to ensure transcript directory: %w", err)
	}

	f, err := os.OpenFile(t.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to fsync transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close transcript: %w", err)
	}

	if t.maxEntries > 0 {
		return t.compact()
	}
	return nil
}

// compact keeps the newest maxEntries entries. Caller holds t.mu.
func (t *Transcript) compact() error {
	entries, err := t.read()
	if err != nil {
		return err
	}
	if len(entries) <= t.maxEntries {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries[len(entries)-t.maxEntries:] {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
	}
	return writeAtomic(t.Path, buf.Bytes())
}

// Entries reads every line of the file.
func (t *Transcript) Entries(ctx context.Context) ([]domain.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.read()
}

func (t *Transcript) read() ([]domain.Entry, error) {
	f, err := os.Open(t.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Entry{}, nil
		}
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	entries := []domain.Entry{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var e domain.Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transcript line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return entries, nil
}

// Reset truncates the transcript.
func (t *Transcript) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := os.Remove(t.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}

// Close is a no-op; the file is opened per call.
func (t *Transcript) Close() error {
	return nil
}

// writeAtomic replaces path with data through a temp file in the same directory,
// fsync and rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // No-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing transcript for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

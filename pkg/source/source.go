// Package source supplies file content to the analysis runner.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrBinary is returned by Text for content that is not source text.
var ErrBinary = errors.New("binary content")

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

var _ ContentSource = (*FilesystemSource)(nil)

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MemorySource serves content held in memory, keyed by path.
// It is safe for concurrent use.
type MemorySource struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ ContentSource = (*MemorySource)(nil)

// NewMemory creates a source over files.
func NewMemory(files map[string]string) *MemorySource {
	m := &MemorySource{files: make(map[string][]byte, len(files))}
	for path, content := range files {
		m.files[path] = []byte(content)
	}
	return m
}

// Put stores content under path.
func (m *MemorySource) Put(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

// Read implements ContentSource.
func (m *MemorySource) Read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	if !ok {
		return nil, &os.PathError{Op: "read", Path: path, Err: os.ErrNotExist}
	}
	return content, nil
}

// NewReader drains r into a MemorySource under name. It backs reading a
// buffer from stdin.
func NewReader(name string, r io.Reader) (*MemorySource, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	m := NewMemory(nil)
	m.Put(name, content)
	return m, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Text reads path from src and returns it as analysis-ready text: a leading
// byte order mark is dropped and CRLF line endings become LF. Content with a
// NUL byte in its first 8 KiB is rejected with ErrBinary.
func Text(src ContentSource, path string) (string, error) {
	content, err := src.Read(path)
	if err != nil {
		return "", err
	}

	head := content
	if len(head) > 8192 {
		head = head[:8192]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return "", fmt.Errorf("%s: %w", path, ErrBinary)
	}

	content = bytes.TrimPrefix(content, utf8BOM)
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return string(content), nil
}

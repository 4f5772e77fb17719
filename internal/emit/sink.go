package emit

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rcliao/regexgen/internal/format"
)

// Sink creates the directories and streams a run writes to.
type Sink interface {
	// MkdirAll creates dir if missing. An existing dir is not an error.
	MkdirAll(dir string) error
	Create(path string) (io.WriteCloser, error)
}

// FileSink writes to the local file system.
type FileSink struct{}

func (FileSink) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func (FileSink) Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &bufferedFile{f: f, w: bufio.NewWriter(f)}, nil
}

type bufferedFile struct {
	f *os.File
	w *bufio.Writer
}

func (b *bufferedFile) Write(p []byte) (int, error) { return b.w.Write(p) }

func (b *bufferedFile) Close() error {
	if err := b.w.Flush(); err != nil {
		b.f.Close()
		return err
	}
	return b.f.Close()
}

// MemorySink keeps every stream in memory, keyed by path.
type MemorySink struct {
	mu    sync.Mutex
	files map[string]*bytes.Buffer
	dirs  map[string]bool
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: map[string]*bytes.Buffer{}, dirs: map[string]bool{}}
}

func (m *MemorySink) MkdirAll(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(dir)] = true
	return nil
}

func (m *MemorySink) Create(path string) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := &bytes.Buffer{}
	m.files[path] = buf
	return nopCloser{buf}, nil
}

// File returns the contents written to path.
func (m *MemorySink) File(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.files[path]
	if !ok {
		return "", false
	}
	return buf.String(), true
}

// Paths returns every written path, sorted.
func (m *MemorySink) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// stream is one open output file of a single format.
type stream struct {
	format format.Format
	path   string
	w      io.WriteCloser
	bytes  int64
	closed bool
}

func openStream(sink Sink, path string, f format.Format) (*stream, error) {
	w, err := sink.Create(path)
	if err != nil {
		return nil, err
	}
	return &stream{format: f, path: path, w: w}, nil
}

func (s *stream) write(text string) error {
	n, err := io.WriteString(s.w, text)
	s.bytes += int64(n)
	return err
}

// close flushes and closes the stream. Later calls are no-ops.
func (s *stream) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.w.Close()
}

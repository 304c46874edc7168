package fsys

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"testing/fstest"

	"github.com/ryotapoi/mdref/internal/core"
)

var _ core.FileSystemGateway = (*Mem)(nil)

// Mem is an in-memory file tree. Reads and writes of individual paths can
// be made to fail with FailRead and FailWrite.
type Mem struct {
	mu        sync.Mutex
	files     fstest.MapFS
	failRead  map[string]error
	failWrite map[string]error
}

// NewMem returns a tree holding the given files (path -> content).
func NewMem(files map[string]string) *Mem {
	m := &Mem{
		files:     fstest.MapFS{},
		failRead:  map[string]error{},
		failWrite: map[string]error{},
	}
	for p, content := range files {
		m.files[core.NormalizePath(p)] = &fstest.MapFile{Data: []byte(content), Mode: 0o644}
	}
	return m
}

// FailRead makes every later Read of p return err.
func (m *Mem) FailRead(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead[core.NormalizePath(p)] = err
}

// FailWrite makes every later Write of p return err.
func (m *Mem) FailWrite(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite[core.NormalizePath(p)] = err
}

// Content returns the current content of p and whether it exists.
func (m *Mem) Content(p string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[core.NormalizePath(p)]
	if !ok || f.Mode.IsDir() {
		return "", false
	}
	return string(f.Data), true
}

// Paths returns every file path in the tree, sorted.
func (m *Mem) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p, f := range m.files {
		if !f.Mode.IsDir() {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (m *Mem) Read(p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = core.NormalizePath(p)
	if err := m.failRead[p]; err != nil {
		return nil, err
	}
	f, ok := m.files[p]
	if !ok || f.Mode.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.Data...), nil
}

func (m *Mem) Write(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = core.NormalizePath(p)
	if err := m.failWrite[p]; err != nil {
		return err
	}
	mode := fs.FileMode(0o644)
	if f, ok := m.files[p]; ok {
		if f.Mode.IsDir() {
			return &fs.PathError{Op: "write", Path: p, Err: fmt.Errorf("is a directory")}
		}
		mode = f.Mode
	}
	m.files[p] = &fstest.MapFile{Data: append([]byte(nil), data...), Mode: mode}
	return nil
}

func (m *Mem) List(dir string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = core.NormalizePath(dir)
	if dir == "" {
		dir = "."
	}
	return fs.ReadDir(m.files, dir)
}

func (m *Mem) Exists(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := fs.Stat(m.files, statPath(p))
	return err == nil
}

// Rename moves a file, or a directory with everything below it.
func (m *Mem) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldPath = core.NormalizePath(oldPath)
	newPath = core.NormalizePath(newPath)
	if _, err := fs.Stat(m.files, statPath(oldPath)); err != nil {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	renames := map[string]string{}
	for p := range m.files {
		switch {
		case p == oldPath:
			renames[p] = newPath
		case strings.HasPrefix(p, oldPath+"/"):
			renames[p] = newPath + strings.TrimPrefix(p, oldPath)
		}
	}
	moved := map[string]*fstest.MapFile{}
	for from, to := range renames {
		moved[to] = m.files[from]
		delete(m.files, from)
	}
	for to, f := range moved {
		m.files[to] = f
	}
	return nil
}

func (m *Mem) MkdirAll(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for d := core.NormalizePath(dir); d != "" && d != "."; d = path.Dir(d) {
		if _, ok := m.files[d]; !ok {
			m.files[d] = &fstest.MapFile{Mode: fs.ModeDir | 0o755}
		}
	}
	return nil
}

func statPath(p string) string {
	p = core.NormalizePath(p)
	if p == "" {
		return "."
	}
	return p
}

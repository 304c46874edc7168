// Package fsys provides core.FileSystemGateway implementations: OS, rooted
// at a project directory, and Mem, an in-memory tree used by tests.
package fsys

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ryotapoi/mdref/internal/core"
)

var _ core.FileSystemGateway = (*OS)(nil)

// OS reads and writes files below a project root on the local disk.
// All paths are project-relative and slash separated.
type OS struct {
	root string
}

// NewOS returns a gateway rooted at root.
func NewOS(root string) *OS {
	return &OS{root: root}
}

// Root returns the directory the gateway is rooted at.
func (o *OS) Root() string { return o.root }

func (o *OS) abs(p string) string {
	return filepath.Join(o.root, filepath.FromSlash(p))
}

func (o *OS) Read(p string) ([]byte, error) {
	return os.ReadFile(o.abs(p))
}

// Write replaces the file content. An existing file keeps its permission
// bits; new files are created 0o644.
func (o *OS) Write(p string, data []byte) error {
	full := o.abs(p)
	perm := os.FileMode(0o644)
	if info, err := os.Stat(full); err == nil {
		perm = info.Mode().Perm()
	}
	return writeFilePreservePerm(full, data, perm)
}

func (o *OS) List(dir string) ([]fs.DirEntry, error) {
	return os.ReadDir(o.abs(dir))
}

func (o *OS) Exists(p string) bool {
	_, err := os.Stat(o.abs(p))
	return err == nil
}

func (o *OS) Rename(oldPath, newPath string) error {
	return os.Rename(o.abs(oldPath), o.abs(newPath))
}

func (o *OS) MkdirAll(dir string) error {
	return os.MkdirAll(o.abs(dir), 0o755)
}

// writeFilePreservePerm writes data to path with the given permission bits.
// os.WriteFile applies umask on file creation, so os.Chmod is called to
// ensure the exact permission bits are set.
func writeFilePreservePerm(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return err
	}
	return os.Chmod(path, perm)
}

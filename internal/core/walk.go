package core

import (
	"io/fs"
	"sort"

	"github.com/ryotapoi/mdref/internal/logger"
)

var log = logger.GetLogger("core")

// walker visits project directories depth-first. Dot-directories (which
// include the data directory) and excluded paths are skipped.
type walker struct {
	fs  FileSystemGateway
	cfg Config
}

// walk calls visitDir for every directory, starting with the root (""),
// and visitFile for every regular file. Entries are visited in name order.
// Only a failure to list the root is returned; unreadable subdirectories
// are logged and skipped.
func (w walker) walk(visitDir func(dir string), visitFile func(p string)) error {
	entries, err := w.fs.List("")
	if err != nil {
		return &PathError{Op: "list", Path: ".", Err: err}
	}
	w.visit("", entries, visitDir, visitFile)
	return nil
}

func (w walker) visit(dir string, entries []fs.DirEntry, visitDir func(string), visitFile func(string)) {
	if visitDir != nil {
		visitDir(dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		name := e.Name()
		if isHidden(name) {
			continue
		}
		p := JoinPath(dir, name)
		if w.cfg.IsExcluded(p) {
			continue
		}
		if e.IsDir() {
			children, err := w.fs.List(p)
			if err != nil {
				log.Warningf("skipping unreadable directory %s: %v", p, err)
				continue
			}
			w.visit(p, children, visitDir, visitFile)
			continue
		}
		if visitFile != nil {
			visitFile(p)
		}
	}
}

// dirs returns every walked directory in visiting order.
func (w walker) dirs() ([]string, error) {
	var out []string
	err := w.walk(func(dir string) { out = append(out, dir) }, nil)
	return out, err
}

// contentFiles returns every file with a content extension, regardless of
// whether any sidecar lists it.
func (w walker) contentFiles() ([]string, error) {
	var out []string
	err := w.walk(nil, func(p string) {
		if hasExtension(p, w.cfg.ContentExtensions) {
			out = append(out, p)
		}
	})
	return out, err
}

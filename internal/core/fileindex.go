package core

import "sort"

// FileIndex maps every canonical path listed in any sidecar to its entry.
// It is rebuilt wholesale by Build and patched by Upsert and Remove.
// Callers serialize mutating calls.
type FileIndex struct {
	walker  walker
	store   DirectoryMetadataStore
	entries map[string]ProjectFileEntry
	obs     observers
}

// NewFileIndex returns an empty index reading sidecars through store.
func NewFileIndex(fs FileSystemGateway, store DirectoryMetadataStore, cfg Config) *FileIndex {
	return &FileIndex{
		walker:  walker{fs: fs, cfg: cfg},
		store:   store,
		entries: make(map[string]ProjectFileEntry),
	}
}

// Build scans the sidecar of every project directory and replaces the
// index contents. A directory whose sidecar is missing contributes nothing;
// one whose sidecar cannot be loaded is logged and skipped. When a sidecar
// lists the same name twice, the later item wins.
func (x *FileIndex) Build() error {
	entries := make(map[string]ProjectFileEntry)
	err := x.walker.walk(func(dir string) {
		meta, err := x.store.Load(dir)
		if err != nil {
			log.Warningf("skipping sidecar of %q: %v", dir, err)
			return
		}
		if meta == nil {
			return
		}
		for _, item := range meta.Files {
			e := NewProjectFileEntry(dir, item)
			if x.walker.cfg.IsExcluded(e.Path) {
				continue
			}
			entries[e.Path] = e
		}
	}, nil)
	if err != nil {
		return err
	}
	x.entries = entries
	log.Debugf("file index built: %d entries", len(entries))
	x.obs.notify(IndexChange{Kind: ChangeRebuilt})
	return nil
}

// Upsert inserts or replaces the entry at p.
func (x *FileIndex) Upsert(p string, e ProjectFileEntry) {
	p = NormalizePath(p)
	e.Path = p
	x.entries[p] = e
	x.obs.notify(IndexChange{Kind: ChangeUpdated, Paths: []string{p}})
}

// Remove deletes the entry at p. Removing an unknown path is a no-op.
func (x *FileIndex) Remove(p string) {
	p = NormalizePath(p)
	if _, ok := x.entries[p]; !ok {
		return
	}
	delete(x.entries, p)
	x.obs.notify(IndexChange{Kind: ChangeRemoved, Paths: []string{p}})
}

// Lookup returns the entry at p.
func (x *FileIndex) Lookup(p string) (ProjectFileEntry, bool) {
	e, ok := x.entries[NormalizePath(p)]
	return e, ok
}

// Size returns the number of indexed entries.
func (x *FileIndex) Size() int {
	return len(x.entries)
}

// Entries returns every entry sorted by path.
func (x *FileIndex) Entries() []ProjectFileEntry {
	out := make([]ProjectFileEntry, 0, len(x.entries))
	for _, e := range x.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Clear empties the index.
func (x *FileIndex) Clear() {
	x.entries = make(map[string]ProjectFileEntry)
	x.obs.notify(IndexChange{Kind: ChangeCleared})
}

// OnChange registers fn to run after every mutation and returns a function
// that unregisters it.
func (x *FileIndex) OnChange(fn func(IndexChange)) func() {
	return x.obs.add(fn)
}

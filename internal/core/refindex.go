package core

import (
	"fmt"
	"sort"
)

// ReferenceEdge is a directed structured reference between two entries.
type ReferenceEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// References holds both directions of the reference graph for one path.
type References struct {
	References   []string `json:"references"`
	ReferencedBy []string `json:"referenced_by"`
}

// ReferenceIndex is the bidirectional graph of structured references
// declared in sidecar metadata. The reverse map is always the exact
// transpose of the forward map. Callers serialize mutating calls.
type ReferenceIndex struct {
	walker   walker
	store    DirectoryMetadataStore
	resolver *Resolver
	files    *FileIndex

	forward  map[string][]string            // source -> targets, declaration order
	reverse  map[string]map[string]struct{} // target -> sources
	declared map[string][]string            // source -> raw targets as declared
	obs      observers
}

// NewReferenceIndex returns an empty graph. files is consulted by
// GetInvalidReferences.
func NewReferenceIndex(fs FileSystemGateway, store DirectoryMetadataStore, cfg Config, resolver *Resolver, files *FileIndex) *ReferenceIndex {
	x := &ReferenceIndex{
		walker:   walker{fs: fs, cfg: cfg},
		store:    store,
		resolver: resolver,
		files:    files,
	}
	x.reset()
	return x
}

func (x *ReferenceIndex) reset() {
	x.forward = make(map[string][]string)
	x.reverse = make(map[string]map[string]struct{})
	x.declared = make(map[string][]string)
}

// Initialize rebuilds the graph from the reference lists of every sidecar.
// Unreadable sidecars are logged and skipped.
func (x *ReferenceIndex) Initialize() error {
	x.reset()
	err := x.walker.walk(func(dir string) {
		meta, err := x.store.Load(dir)
		if err != nil {
			log.Warningf("skipping references in sidecar of %q: %v", dir, err)
			return
		}
		if meta == nil {
			return
		}
		for _, item := range meta.Files {
			if item.Type == KindSubdirectory || len(item.References) == 0 {
				continue
			}
			x.setReferences(JoinPath(dir, item.Name), item.References)
		}
	}, nil)
	if err != nil {
		return err
	}
	log.Debugf("reference index built: %d sources", len(x.forward))
	x.obs.notify(IndexChange{Kind: ChangeRebuilt})
	return nil
}

// GetReferences returns the outgoing targets of p in declaration order and
// the sources referencing p in path order. Unknown paths yield empty lists.
func (x *ReferenceIndex) GetReferences(p string) References {
	p = NormalizePath(p)
	refs := References{
		References:   append([]string{}, x.forward[p]...),
		ReferencedBy: []string{},
	}
	for src := range x.reverse[p] {
		refs.ReferencedBy = append(refs.ReferencedBy, src)
	}
	sort.Strings(refs.ReferencedBy)
	return refs
}

// UpdateFileReferences replaces every outgoing edge of p with newTargets.
// Repeated targets collapse to one edge; targets that do not classify as
// internal are remembered as declared but produce no edge.
func (x *ReferenceIndex) UpdateFileReferences(p string, newTargets []string) {
	p = NormalizePath(p)
	x.setReferences(p, newTargets)
	x.obs.notify(IndexChange{Kind: ChangeUpdated, Paths: []string{p}})
}

func (x *ReferenceIndex) setReferences(p string, targets []string) {
	x.dropOutgoing(p)

	seenRaw := make(map[string]bool, len(targets))
	seenEdge := make(map[string]bool, len(targets))
	var declared, edges []string
	for _, raw := range targets {
		if seenRaw[raw] {
			continue
		}
		seenRaw[raw] = true
		declared = append(declared, raw)

		c := x.classify(raw, p)
		if c.Kind != LinkInternal || seenEdge[c.Path] {
			continue
		}
		seenEdge[c.Path] = true
		edges = append(edges, c.Path)
		if x.reverse[c.Path] == nil {
			x.reverse[c.Path] = make(map[string]struct{})
		}
		x.reverse[c.Path][p] = struct{}{}
	}
	if len(declared) > 0 {
		x.declared[p] = declared
	}
	if len(edges) > 0 {
		x.forward[p] = edges
	}
}

// classify resolves a declared reference by its path part; a "#..." suffix
// names a section of the target and does not change which entry it is.
func (x *ReferenceIndex) classify(raw, p string) Classification {
	target, _ := splitFragment(raw)
	return x.resolver.Classify(target, p)
}

// dropOutgoing removes p's outgoing edges and declared targets, keeping the
// reverse map in step.
func (x *ReferenceIndex) dropOutgoing(p string) {
	for _, t := range x.forward[p] {
		srcs := x.reverse[t]
		delete(srcs, p)
		if len(srcs) == 0 {
			delete(x.reverse, t)
		}
	}
	delete(x.forward, p)
	delete(x.declared, p)
}

// RemoveFile drops the outgoing edges of p. Edges other entries declare
// towards p stay, since their sidecars still list it.
func (x *ReferenceIndex) RemoveFile(p string) {
	p = NormalizePath(p)
	x.dropOutgoing(p)
	x.obs.notify(IndexChange{Kind: ChangeRemoved, Paths: []string{p}})
}

// Declared returns the raw targets declared for p, without duplicates.
func (x *ReferenceIndex) Declared(p string) []string {
	return append([]string(nil), x.declared[NormalizePath(p)]...)
}

// Sources returns every path with at least one declared target, sorted.
func (x *ReferenceIndex) Sources() []string {
	out := make([]string, 0, len(x.declared))
	for p := range x.declared {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// GetInvalidReferences returns the declared targets of p that point at no
// entry of the file index, or that leave the project. External targets are
// never reported. Computed on each call.
func (x *ReferenceIndex) GetInvalidReferences(p string) []string {
	p = NormalizePath(p)
	var out []string
	for _, raw := range x.declared[p] {
		c := x.classify(raw, p)
		switch c.Kind {
		case LinkExternal:
			continue
		case LinkInternal:
			if _, ok := x.files.Lookup(c.Path); ok {
				continue
			}
		}
		out = append(out, raw)
	}
	return out
}

// Edges returns every edge sorted by source, then target.
func (x *ReferenceIndex) Edges() []ReferenceEdge {
	var out []ReferenceEdge
	for src, targets := range x.forward {
		for _, t := range targets {
			out = append(out, ReferenceEdge{Source: src, Target: t})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// CheckConsistency verifies that the reverse map is the transpose of the
// forward map and that no source lists a target twice.
func (x *ReferenceIndex) CheckConsistency() error {
	count := 0
	for src, targets := range x.forward {
		seen := make(map[string]bool, len(targets))
		for _, t := range targets {
			if seen[t] {
				return fmt.Errorf("duplicate edge %s -> %s", src, t)
			}
			seen[t] = true
			if _, ok := x.reverse[t][src]; !ok {
				return fmt.Errorf("edge %s -> %s missing from referenced-by of %s", src, t, t)
			}
			count++
		}
	}
	reverseCount := 0
	for t, srcs := range x.reverse {
		if len(srcs) == 0 {
			return fmt.Errorf("empty referenced-by set for %s", t)
		}
		reverseCount += len(srcs)
	}
	if count != reverseCount {
		return fmt.Errorf("forward has %d edges, reverse has %d", count, reverseCount)
	}
	return nil
}

// Clear empties both directions of the graph.
func (x *ReferenceIndex) Clear() {
	x.reset()
	x.obs.notify(IndexChange{Kind: ChangeCleared})
}

// OnChange registers fn to run after every mutation and returns a function
// that unregisters it.
func (x *ReferenceIndex) OnChange(fn func(IndexChange)) func() {
	return x.obs.add(fn)
}

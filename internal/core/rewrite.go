package core

import (
	"encoding/json"
	"strings"
)

// FailedFile records a file the rewriter could not read, parse or write.
type FailedFile struct {
	Path string
	Err  error
}

func (f FailedFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path  string `json:"path"`
		Error string `json:"error"`
	}{f.Path, f.Err.Error()})
}

// EntryReferences is the reference list of one sidecar entry after a rewrite.
type EntryReferences struct {
	Path       string   `json:"path"`
	References []string `json:"references"`
}

// RewriteReport describes one rewrite pass. Partial failures are reported
// here and never returned as errors.
type RewriteReport struct {
	UpdatedFiles      []string          `json:"updated_files"`
	FailedFiles       []FailedFile      `json:"failed_files"`
	TotalScannedFiles int               `json:"total_scanned_files"`
	ChangedReferences []EntryReferences `json:"changed_references"`
}

// Success reports whether no file failed.
func (r *RewriteReport) Success() bool {
	return len(r.FailedFiles) == 0
}

func (r *RewriteReport) fail(p string, err error) {
	log.Warningf("rewrite: %s: %v", p, err)
	r.FailedFiles = append(r.FailedFiles, FailedFile{Path: p, Err: err})
}

// Rewriter propagates a rename or move to every inline link and every
// structured reference in the project.
type Rewriter struct {
	fs       FileSystemGateway
	store    DirectoryMetadataStore
	resolver *Resolver
	walker   walker
}

// NewRewriter returns a rewriter working through fs and store.
func NewRewriter(fs FileSystemGateway, store DirectoryMetadataStore, cfg Config, resolver *Resolver) *Rewriter {
	return &Rewriter{
		fs:       fs,
		store:    store,
		resolver: resolver,
		walker:   walker{fs: fs, cfg: cfg},
	}
}

// UpdateLinksAfterFileOperation rewrites every link to oldPath so that it
// points at newPath.
//
// Every content file found on disk is scanned, listed in a sidecar or not.
// Links carrying a "#fragment" are left alone. Sidecar reference lists are
// rewritten in every directory. Files that fail are recorded in the report
// and the scan continues; only invalid arguments return an error.
//
// The returned report's ChangedReferences must be applied to the
// ReferenceIndex by the caller.
func (w *Rewriter) UpdateLinksAfterFileOperation(oldPath, newPath string) (*RewriteReport, error) {
	if err := ValidateCanonical(oldPath, "old path"); err != nil {
		return nil, err
	}
	if err := ValidateCanonical(newPath, "new path"); err != nil {
		return nil, err
	}
	oldPath, newPath = NormalizePath(oldPath), NormalizePath(newPath)
	if oldPath == newPath {
		return nil, &ArgumentError{Name: "new path", Reason: "same as old path: " + newPath}
	}

	report := &RewriteReport{}
	w.rewriteContents(oldPath, newPath, report)
	w.rewriteSidecars(oldPath, newPath, report)

	log.Infof("rewrite %s -> %s: %d scanned, %d updated, %d failed",
		oldPath, newPath, report.TotalScannedFiles, len(report.UpdatedFiles), len(report.FailedFiles))
	return report, nil
}

func (w *Rewriter) rewriteContents(oldPath, newPath string, report *RewriteReport) {
	files, err := w.walker.contentFiles()
	if err != nil {
		report.fail(".", err)
		return
	}
	for _, doc := range files {
		report.TotalScannedFiles++
		data, err := w.fs.Read(doc)
		if err != nil {
			report.fail(doc, &PathError{Op: "read", Path: doc, Err: err})
			continue
		}
		text := string(data)
		updated := w.rewriteText(doc, text, oldPath, newPath)
		if updated == text {
			continue
		}
		if err := w.fs.Write(doc, []byte(updated)); err != nil {
			report.fail(doc, &PathError{Op: "write", Path: doc, Err: err})
			continue
		}
		log.Debugf("rewrote links in %s", doc)
		report.UpdatedFiles = append(report.UpdatedFiles, doc)
	}
}

// rewriteText replaces every fragment-free link in text that resolves to
// oldPath. The display text is kept and any title is dropped.
func (w *Rewriter) rewriteText(doc, text, oldPath, newPath string) string {
	tokens := ParseLinkTokens(text)
	var b strings.Builder
	last := 0
	for _, tok := range tokens {
		if tok.HasFragment() {
			continue
		}
		c := w.resolver.Classify(tok.RawTarget, doc)
		if c.Kind != LinkInternal || c.Path != oldPath {
			continue
		}
		b.WriteString(text[last:tok.Offset])
		b.WriteString("[" + tok.DisplayText + "](" + retarget(tok.RawTarget, doc, newPath) + ")")
		last = tok.End
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// retarget writes newPath in the style of raw: "./" and "../" targets stay
// relative to the document, everything else becomes the canonical path.
// Keeping the relative form lets a rename followed by its reverse restore
// the original text.
func retarget(raw, doc, newPath string) string {
	if isRelativeTarget(strings.ReplaceAll(raw, "\\", "/")) {
		return relativeTarget(doc, newPath)
	}
	return newPath
}

func (w *Rewriter) rewriteSidecars(oldPath, newPath string, report *RewriteReport) {
	dirs, err := w.walker.dirs()
	if err != nil {
		report.fail(".", err)
		return
	}
	for _, dir := range dirs {
		metaPath := JoinPath(dir, w.store.FileName())
		meta, err := w.store.Load(dir)
		if err != nil {
			report.TotalScannedFiles++
			report.fail(metaPath, err)
			continue
		}
		if meta == nil {
			continue
		}
		report.TotalScannedFiles++

		var changed []EntryReferences
		for i := range meta.Files {
			item := &meta.Files[i]
			entryPath := JoinPath(dir, item.Name)
			if !w.rewriteReferences(item, entryPath, oldPath, newPath) {
				continue
			}
			changed = append(changed, EntryReferences{
				Path:       entryPath,
				References: append([]string(nil), item.References...),
			})
		}
		if len(changed) == 0 {
			continue
		}
		if err := w.store.Save(dir, meta); err != nil {
			report.fail(metaPath, err)
			continue
		}
		log.Debugf("rewrote references in %s", metaPath)
		report.UpdatedFiles = append(report.UpdatedFiles, metaPath)
		report.ChangedReferences = append(report.ChangedReferences, changed...)
	}
}

// rewriteReferences replaces the references of item that name oldPath,
// either verbatim or through any form the resolver maps to it.
func (w *Rewriter) rewriteReferences(item *MetaEntry, entryPath, oldPath, newPath string) bool {
	changed := false
	for j, ref := range item.References {
		if ref == oldPath {
			item.References[j] = newPath
			changed = true
			continue
		}
		if strings.Contains(ref, "#") {
			continue
		}
		c := w.resolver.Classify(ref, entryPath)
		if c.Kind == LinkInternal && c.Path == oldPath {
			item.References[j] = retarget(ref, entryPath, newPath)
			changed = true
		}
	}
	return changed
}

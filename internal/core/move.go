package core

import (
	"fmt"
	"strings"
)

// RenameFile renames or moves a tracked content or setting file and keeps
// every link to it consistent:
//
//  1. the file is renamed on disk and its sidecar entry moves with it;
//  2. relative links and references inside the moved file are rewritten
//     so they still reach the same targets from the new directory;
//  3. the file index and the moved file's outgoing edges are updated;
//  4. every other link is rewritten by the Rewriter and the changed
//     reference lists are applied to the reference index.
//
// Failures in steps 1-2 roll back and return an error. Failures in step 4
// are reported in the returned report.
func (p *Project) RenameFile(oldPath, newPath string) (*RewriteReport, error) {
	if err := ValidateCanonical(oldPath, "old path"); err != nil {
		return nil, err
	}
	if err := ValidateCanonical(newPath, "new path"); err != nil {
		return nil, err
	}
	from, to := NormalizePath(oldPath), NormalizePath(newPath)
	if from == to {
		return nil, &ArgumentError{Name: "new path", Reason: "same as old path: " + to}
	}

	entry, ok := p.Files.Lookup(from)
	if !ok {
		return nil, fmt.Errorf("file not registered: %s: %w", from, ErrNotFound)
	}
	if entry.Kind == KindSubdirectory {
		return nil, fmt.Errorf("renaming directory %s: %w", from, ErrUnsupported)
	}
	if _, ok := p.Files.Lookup(to); ok {
		return nil, fmt.Errorf("destination already registered: %s: %w", to, ErrAlreadyExists)
	}
	if p.FS.Exists(to) {
		return nil, fmt.Errorf("destination already exists on disk: %s: %w", to, ErrAlreadyExists)
	}
	if !p.FS.Exists(from) {
		return nil, fmt.Errorf("source file not found on disk: %s: %w", from, ErrNotFound)
	}

	fromDir, toDir := DirOf(from), DirOf(to)
	srcMeta, err := p.Store.Load(fromDir)
	if err != nil {
		return nil, err
	}
	idx := -1
	if srcMeta != nil {
		idx = srcMeta.Find(BaseOf(from))
	}
	if idx < 0 {
		return nil, fmt.Errorf("no sidecar entry for %s: %w", from, ErrNotFound)
	}
	dstMeta := srcMeta
	if toDir != fromDir {
		dstMeta, err = p.Store.Load(toDir)
		if err != nil {
			return nil, err
		}
		if dstMeta == nil {
			dstMeta = &DirectoryMeta{}
		}
		if dstMeta.Find(BaseOf(to)) >= 0 {
			return nil, fmt.Errorf("destination already listed: %s: %w", to, ErrAlreadyExists)
		}
	}

	// Read before any disk change so the outgoing rewrite can be rolled back.
	original, err := p.FS.Read(from)
	if err != nil {
		return nil, &PathError{Op: "read", Path: from, Err: err}
	}

	// Disk move.
	if toDir != "" {
		if err := p.FS.MkdirAll(toDir); err != nil {
			return nil, &PathError{Op: "mkdir", Path: toDir, Err: err}
		}
	}
	if err := p.FS.Rename(from, to); err != nil {
		return nil, &PathError{Op: "rename", Path: from, Err: err}
	}
	rollbackDisk := func() {
		_ = p.FS.Rename(to, from)
		_ = p.FS.Write(from, original)
	}

	// Outgoing relative links of the moved file.
	movedLinks := false
	if toDir != fromDir {
		updated := rewriteOutgoingRelative(string(original), from, to, p.Resolver)
		if updated != string(original) {
			if err := p.FS.Write(to, []byte(updated)); err != nil {
				rollbackDisk()
				return nil, &PathError{Op: "write", Path: to, Err: err}
			}
			movedLinks = true
		}
	}

	// Sidecar entry.
	moved := srcMeta.Files[idx]
	moved.Name = BaseOf(to)
	if toDir != fromDir {
		for j, ref := range moved.References {
			moved.References[j] = rewriteOutgoingReference(ref, from, to, p.Resolver)
		}
	}
	if toDir == fromDir {
		srcMeta.Files[idx] = moved
		if err := p.Store.Save(fromDir, srcMeta); err != nil {
			rollbackDisk()
			return nil, err
		}
	} else {
		srcMeta.Files = append(srcMeta.Files[:idx:idx], srcMeta.Files[idx+1:]...)
		dstMeta.Files = append(dstMeta.Files, moved)
		if err := p.Store.Save(toDir, dstMeta); err != nil {
			rollbackDisk()
			return nil, err
		}
		if err := p.Store.Save(fromDir, srcMeta); err != nil {
			// Drop the entry added to the destination again.
			dstMeta.Files = dstMeta.Files[:len(dstMeta.Files)-1]
			_ = p.Store.Save(toDir, dstMeta)
			rollbackDisk()
			return nil, err
		}
	}

	// Indexes.
	p.Files.Remove(from)
	p.Files.Upsert(to, NewProjectFileEntry(toDir, moved))
	p.Refs.RemoveFile(from)
	if len(moved.References) > 0 {
		p.Refs.UpdateFileReferences(to, moved.References)
	}

	report, err := p.Rewriter.UpdateLinksAfterFileOperation(from, to)
	if err != nil {
		return nil, err
	}
	if movedLinks && !containsString(report.UpdatedFiles, to) {
		report.UpdatedFiles = append(report.UpdatedFiles, to)
	}
	p.ApplyReport(report)
	log.Infof("renamed %s -> %s", from, to)
	return report, nil
}

// rewriteOutgoingRelative rewrites the "./" and "../" links of a file moved
// from -> to so that they resolve to the same targets from the new directory.
// Fragments are kept.
func rewriteOutgoingRelative(text, from, to string, r *Resolver) string {
	tokens := ParseLinkTokens(text)
	var b strings.Builder
	last := 0
	for _, tok := range tokens {
		newRaw := rewriteOutgoingReference(tok.RawTarget, from, to, r)
		if newRaw == tok.RawTarget {
			continue
		}
		b.WriteString(text[last:tok.Offset])
		b.WriteString("[" + tok.DisplayText + "](" + newRaw)
		if tok.HasTitle {
			b.WriteString(` "` + tok.Title + `"`)
		}
		b.WriteString(")")
		last = tok.End
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// rewriteOutgoingReference re-expresses a relative target written in the
// file at from as seen from to. Other targets are returned unchanged.
func rewriteOutgoingReference(raw, from, to string, r *Resolver) string {
	if !isRelativeTarget(strings.ReplaceAll(raw, "\\", "/")) {
		return raw
	}
	target, frag := splitFragment(raw)
	c := r.Classify(target, from)
	if c.Kind != LinkInternal {
		return raw
	}
	// A link to the moved file itself follows it.
	dest := c.Path
	if dest == from {
		dest = to
	}
	return relativeTarget(to, dest) + frag
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

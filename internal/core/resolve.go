package core

import (
	"path/filepath"
	"strings"
)

// LinkKind is the outcome of classifying a raw link target.
type LinkKind int

const (
	LinkInvalid LinkKind = iota
	LinkExternal
	LinkInternal
)

func (k LinkKind) String() string {
	switch k {
	case LinkExternal:
		return "external"
	case LinkInternal:
		return "internal"
	}
	return "invalid"
}

// Classification is the result of Resolver.Classify. Path is set only for
// LinkInternal.
type Classification struct {
	Kind LinkKind
	Path string
}

// Resolver classifies raw link targets found in project documents.
type Resolver struct {
	root    string
	schemes []string
}

// NewResolver returns a resolver for the project at root. schemes are the
// prefixes (e.g. "https://") that mark a target as external.
func NewResolver(root string, schemes []string) *Resolver {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	lower := make([]string, len(schemes))
	for i, s := range schemes {
		lower[i] = strings.ToLower(s)
	}
	return &Resolver{root: abs, schemes: lower}
}

// Root returns the absolute project root.
func (r *Resolver) Root() string { return r.root }

// Classify resolves rawTarget as written in the document at fromDocumentPath.
//
// Targets with a known scheme are external. Targets that are neither
// "./"/"../"-relative nor absolute are taken as already project-relative,
// without checking that they exist. Relative and absolute targets are
// resolved against the document's directory; anything that lands outside
// the project is invalid.
func (r *Resolver) Classify(rawTarget, fromDocumentPath string) Classification {
	raw := strings.TrimSpace(rawTarget)
	if raw == "" {
		return Classification{Kind: LinkInvalid}
	}
	lower := strings.ToLower(raw)
	for _, s := range r.schemes {
		if strings.HasPrefix(lower, s) {
			return Classification{Kind: LinkExternal}
		}
	}

	absolute := filepath.IsAbs(raw) || strings.HasPrefix(raw, "/")
	if !absolute {
		raw = strings.ReplaceAll(raw, "\\", "/")
	}
	if !absolute && !isRelativeTarget(raw) {
		return internalOrInvalid(NormalizePath(raw))
	}

	var abs string
	if absolute {
		abs = filepath.Clean(raw)
	} else {
		docDir := filepath.FromSlash(DirOf(NormalizePath(fromDocumentPath)))
		abs = filepath.Join(r.root, docDir, filepath.FromSlash(raw))
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || filepath.IsAbs(rel) {
		return Classification{Kind: LinkInvalid}
	}
	return internalOrInvalid(NormalizePath(filepath.ToSlash(rel)))
}

func internalOrInvalid(p string) Classification {
	if p == "" || p == ".." || strings.HasPrefix(p, "../") {
		return Classification{Kind: LinkInvalid}
	}
	return Classification{Kind: LinkInternal, Path: p}
}

func isRelativeTarget(target string) bool {
	return strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../")
}

// relativeTarget writes target (canonical) relative to the directory of the
// document at docPath, prefixed with "./" when it does not climb.
func relativeTarget(docPath, target string) string {
	from := "/" + DirOf(docPath)
	rel, err := filepath.Rel(filepath.FromSlash(from), filepath.FromSlash("/"+target))
	if err != nil {
		return target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "..") {
		rel = "./" + rel
	}
	return rel
}

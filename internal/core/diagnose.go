package core

import "sort"

// DiagnoseOptions controls which fields to return.
type DiagnoseOptions struct {
	Fields []string // nil/empty = all
}

// InvalidReference groups the unresolvable declared targets of one source.
type InvalidReference struct {
	Source  string   `json:"source"`
	Targets []string `json:"targets"`
}

// DiagnoseResult contains diagnostic information about the loaded project.
type DiagnoseResult struct {
	InvalidReferences []InvalidReference `json:"invalid_references"` // sorted by source
	Untracked         []string           `json:"untracked"`          // content files listed in no sidecar
	Missing           []string           `json:"missing"`            // sidecar entries with no file on disk
}

var validDiagnoseFields = map[string]bool{
	"invalid_references": true,
	"untracked":          true,
	"missing":            true,
}

// HasProblems reports whether any invalid reference was found.
func (r *DiagnoseResult) HasProblems() bool {
	return len(r.InvalidReferences) > 0
}

// Diagnose returns diagnostic information for the loaded project.
func (p *Project) Diagnose(opts DiagnoseOptions) (*DiagnoseResult, error) {
	for _, f := range opts.Fields {
		if !validDiagnoseFields[f] {
			return nil, &ArgumentError{Name: "fields", Reason: "unknown diagnose field: " + f}
		}
	}

	result := &DiagnoseResult{}

	if isFieldActive("invalid_references", opts.Fields) {
		for _, src := range p.Refs.Sources() {
			bad := p.Refs.GetInvalidReferences(src)
			if len(bad) == 0 {
				continue
			}
			result.InvalidReferences = append(result.InvalidReferences, InvalidReference{Source: src, Targets: bad})
		}
	}

	if isFieldActive("untracked", opts.Fields) {
		files, err := p.Rewriter.walker.contentFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, ok := p.Files.Lookup(f); !ok {
				result.Untracked = append(result.Untracked, f)
			}
		}
		sort.Strings(result.Untracked)
	}

	if isFieldActive("missing", opts.Fields) {
		for _, e := range p.Files.Entries() {
			if !p.FS.Exists(e.Path) {
				result.Missing = append(result.Missing, e.Path)
			}
		}
	}

	return result, nil
}

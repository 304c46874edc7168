package core

// Project owns the indexes of one open project directory. Nothing is
// shared between two Project values.
type Project struct {
	Root     string
	Config   Config
	FS       FileSystemGateway
	Store    DirectoryMetadataStore
	Files    *FileIndex
	Refs     *ReferenceIndex
	Resolver *Resolver
	Rewriter *Rewriter
}

// NewProject wires the indexes for the project at root. The indexes are
// empty until Rebuild is called.
func NewProject(root string, fs FileSystemGateway, store DirectoryMetadataStore, cfg Config) *Project {
	resolver := NewResolver(root, cfg.ExternalSchemes)
	files := NewFileIndex(fs, store, cfg)
	return &Project{
		Root:     resolver.Root(),
		Config:   cfg,
		FS:       fs,
		Store:    store,
		Files:    files,
		Refs:     NewReferenceIndex(fs, store, cfg, resolver, files),
		Resolver: resolver,
		Rewriter: NewRewriter(fs, store, cfg, resolver),
	}
}

// Rebuild builds the file index, then the reference index.
func (p *Project) Rebuild() error {
	if err := p.Files.Build(); err != nil {
		return err
	}
	return p.Refs.Initialize()
}

// Clear empties both indexes.
func (p *Project) Clear() {
	p.Files.Clear()
	p.Refs.Clear()
}

// ApplyReport pushes the reference lists a rewrite changed into the
// reference index.
func (p *Project) ApplyReport(report *RewriteReport) {
	for _, cr := range report.ChangedReferences {
		p.Refs.UpdateFileReferences(cr.Path, cr.References)
	}
}

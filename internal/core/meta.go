package core

import (
	"fmt"
	"io/fs"
)

// EntryKind is the type of an entry listed in a sidecar metadata file.
type EntryKind string

const (
	KindContent      EntryKind = "content"
	KindSetting      EntryKind = "setting"
	KindSubdirectory EntryKind = "subdirectory"
)

// ParseEntryKind validates a raw kind string from sidecar metadata.
func ParseEntryKind(s string) (EntryKind, error) {
	switch k := EntryKind(s); k {
	case KindContent, KindSetting, KindSubdirectory:
		return k, nil
	}
	return "", fmt.Errorf("unknown entry type: %q", s)
}

// CharacterInfo marks a setting entry as describing a character.
type CharacterInfo struct {
	Importance         string `yaml:"importance,omitempty"`
	MultipleCharacters bool   `yaml:"multiple_characters,omitempty"`
	DisplayName        string `yaml:"display_name,omitempty"`
}

// ForeshadowingPoint is one location of a plant or payoff.
type ForeshadowingPoint struct {
	Location string `yaml:"location"`
	Comment  string `yaml:"comment,omitempty"`
}

// Foreshadowing groups the plants of a foreshadowing and its payoff.
type Foreshadowing struct {
	Plants []ForeshadowingPoint `yaml:"plants,omitempty"`
	Payoff *ForeshadowingPoint  `yaml:"payoff,omitempty"`
}

// MetaEntry is one item of a directory's sidecar listing.
type MetaEntry struct {
	Name          string         `yaml:"name"`
	Type          EntryKind      `yaml:"type"`
	Tags          []string       `yaml:"tags,omitempty"`
	References    []string       `yaml:"references,omitempty"`
	Character     *CharacterInfo `yaml:"character,omitempty"`
	Glossary      bool           `yaml:"glossary,omitempty"`
	Foreshadowing *Foreshadowing `yaml:"foreshadowing,omitempty"`
}

// DirectoryMeta is the parsed sidecar metadata of one directory.
type DirectoryMeta struct {
	Readme string      `yaml:"readme,omitempty"`
	Files  []MetaEntry `yaml:"files"`
}

// Find returns the index of the entry called name, or -1.
func (m *DirectoryMeta) Find(name string) int {
	for i := range m.Files {
		if m.Files[i].Name == name {
			return i
		}
	}
	return -1
}

// ProjectFileEntry is the indexed view of one sidecar entry.
type ProjectFileEntry struct {
	Path             string    `json:"path"`
	DisplayName      string    `json:"display_name"`
	Kind             EntryKind `json:"kind"`
	IsCharacter      bool      `json:"is_character"`
	Glossary         bool      `json:"glossary"`
	HasForeshadowing bool      `json:"has_foreshadowing"`
}

// NewProjectFileEntry derives the indexed entry for a sidecar item in dir.
func NewProjectFileEntry(dir string, e MetaEntry) ProjectFileEntry {
	display := e.Name
	if e.Character != nil && e.Character.DisplayName != "" {
		display = e.Character.DisplayName
	}
	return ProjectFileEntry{
		Path:             JoinPath(dir, e.Name),
		DisplayName:      display,
		Kind:             e.Type,
		IsCharacter:      e.Character != nil,
		Glossary:         e.Glossary,
		HasForeshadowing: e.Foreshadowing != nil,
	}
}

// DirectoryMetadataStore loads and saves sidecar metadata.
// dir is project-relative ("" for the root).
// Load returns (nil, nil) when the directory has no sidecar file.
type DirectoryMetadataStore interface {
	Load(dir string) (*DirectoryMeta, error)
	Save(dir string, meta *DirectoryMeta) error
	// FileName is the sidecar file name inside each directory.
	FileName() string
}

// FileSystemGateway performs file I/O on project-relative paths.
type FileSystemGateway interface {
	Read(p string) ([]byte, error)
	Write(p string, data []byte) error
	List(dir string) ([]fs.DirEntry, error)
	Exists(p string) bool
	Rename(oldPath, newPath string) error
	MkdirAll(dir string) error
}

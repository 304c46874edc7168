// Package sidecar stores per-directory metadata listings as YAML files.
package sidecar

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ryotapoi/mdref/internal/core"
)

var _ core.DirectoryMetadataStore = (*Store)(nil)

// Store is a YAML implementation of core.DirectoryMetadataStore. Each
// directory keeps its listing in a file called FileName().
type Store struct {
	fs   core.FileSystemGateway
	name string
}

// New returns a store reading and writing name inside each directory.
func New(fs core.FileSystemGateway, name string) *Store {
	return &Store{fs: fs, name: name}
}

func (s *Store) FileName() string { return s.name }

// Load parses the sidecar of dir. A directory without a sidecar yields
// (nil, nil).
func (s *Store) Load(dir string) (*core.DirectoryMeta, error) {
	p := core.JoinPath(dir, s.name)
	if !s.fs.Exists(p) {
		return nil, nil
	}
	data, err := s.fs.Read(p)
	if err != nil {
		return nil, &core.PathError{Op: "load", Path: p, Err: err}
	}
	meta, err := Decode(data)
	if err != nil {
		return nil, &core.PathError{Op: "parse", Path: p, Err: err}
	}
	return meta, nil
}

// Save replaces the sidecar of dir with meta.
func (s *Store) Save(dir string, meta *core.DirectoryMeta) error {
	p := core.JoinPath(dir, s.name)
	data, err := Encode(meta)
	if err != nil {
		return &core.PathError{Op: "encode", Path: p, Err: err}
	}
	if err := s.fs.Write(p, data); err != nil {
		return &core.PathError{Op: "save", Path: p, Err: err}
	}
	return nil
}

// Decode parses and validates a sidecar document.
func Decode(data []byte) (*core.DirectoryMeta, error) {
	var meta core.DirectoryMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	for i, e := range meta.Files {
		if e.Name == "" {
			return nil, fmt.Errorf("files[%d]: missing name", i)
		}
		if strings.ContainsAny(e.Name, `/\`) || e.Name == "." || e.Name == ".." {
			return nil, fmt.Errorf("files[%d]: invalid name %q", i, e.Name)
		}
		if _, err := core.ParseEntryKind(string(e.Type)); err != nil {
			return nil, fmt.Errorf("files[%d] (%s): %w", i, e.Name, err)
		}
	}
	return &meta, nil
}

// Encode renders a sidecar document with two-space indentation.
func Encode(meta *core.DirectoryMeta) ([]byte, error) {
	if meta == nil {
		meta = &core.DirectoryMeta{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package snapshot

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ryotapoi/mdref/internal/core"
)

// QueryOptions controls which fields to return.
type QueryOptions struct {
	Fields []string // nil/empty = all
}

// QueryResult contains all requested fields for one path.
type QueryResult struct {
	Path         string                 `json:"path"`
	Entry        *core.ProjectFileEntry `json:"entry,omitempty"` // nil = not indexed or not requested
	References   []string               `json:"references,omitempty"`
	ReferencedBy []string               `json:"referenced_by,omitempty"`
	Invalid      []string               `json:"invalid,omitempty"`
}

var validQueryFields = map[string]bool{
	"entry":         true,
	"references":    true,
	"referenced_by": true,
	"invalid":       true,
}

// Query returns what the snapshot knows about the canonical path p.
// A path that is neither indexed nor part of any edge is reported as
// core.ErrNotFound.
func (s *Snapshot) Query(p string, opts QueryOptions) (*QueryResult, error) {
	for _, f := range opts.Fields {
		if !validQueryFields[f] {
			return nil, &core.ArgumentError{Name: "fields", Reason: "unknown query field: " + f}
		}
	}
	if err := core.ValidateCanonical(p, "file"); err != nil {
		return nil, err
	}
	p = core.NormalizePath(p)

	entry, err := s.Entry(p)
	if err != nil {
		return nil, err
	}
	refs, err := s.References(p)
	if err != nil {
		return nil, err
	}
	if entry == nil && len(refs.References) == 0 && len(refs.ReferencedBy) == 0 {
		return nil, fmt.Errorf("%s: %w", p, core.ErrNotFound)
	}

	result := &QueryResult{Path: p}
	if isFieldActive("entry", opts.Fields) {
		result.Entry = entry
	}
	if isFieldActive("references", opts.Fields) {
		result.References = refs.References
	}
	if isFieldActive("referenced_by", opts.Fields) {
		result.ReferencedBy = refs.ReferencedBy
	}
	if isFieldActive("invalid", opts.Fields) {
		result.Invalid, err = queryStrings(s.db, `SELECT target FROM invalid_refs WHERE source = ? ORDER BY id`, p)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Entry returns the indexed entry at p, or nil.
func (s *Snapshot) Entry(p string) (*core.ProjectFileEntry, error) {
	var e core.ProjectFileEntry
	var kind string
	var isChar, glossary, foreshadow int
	err := s.db.QueryRow(
		`SELECT path, display_name, kind, is_character, glossary, has_foreshadowing
		 FROM entries WHERE path = ?`,
		core.NormalizePath(p),
	).Scan(&e.Path, &e.DisplayName, &kind, &isChar, &glossary, &foreshadow)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Kind = core.EntryKind(kind)
	e.IsCharacter = isChar == 1
	e.Glossary = glossary == 1
	e.HasForeshadowing = foreshadow == 1
	return &e, nil
}

// References returns both directions of the reference graph for p, as
// stored in the snapshot. Lists are never nil.
func (s *Snapshot) References(p string) (core.References, error) {
	p = core.NormalizePath(p)
	out, err := queryStrings(s.db, `SELECT target FROM edges WHERE source = ? ORDER BY position`, p)
	if err != nil {
		return core.References{}, err
	}
	in, err := queryStrings(s.db, `SELECT source FROM edges WHERE target = ? ORDER BY source`, p)
	if err != nil {
		return core.References{}, err
	}
	return core.References{References: out, ReferencedBy: in}, nil
}

// Stats returns aggregate counts stored in the snapshot.
func (s *Snapshot) Stats(opts core.StatsOptions) (*core.StatsResult, error) {
	if err := core.ValidateStatsFields(opts.Fields); err != nil {
		return nil, err
	}

	result := &core.StatsResult{}
	counts := []struct {
		dst *int
		q   string
	}{
		{&result.EntriesTotal, `SELECT COUNT(*) FROM entries`},
		{&result.ContentTotal, `SELECT COUNT(*) FROM entries WHERE kind='content'`},
		{&result.SettingsTotal, `SELECT COUNT(*) FROM entries WHERE kind='setting'`},
		{&result.SubdirectoryTotal, `SELECT COUNT(*) FROM entries WHERE kind='subdirectory'`},
		{&result.CharactersTotal, `SELECT COUNT(*) FROM entries WHERE is_character=1`},
		{&result.GlossaryTotal, `SELECT COUNT(*) FROM entries WHERE glossary=1`},
		{&result.ForeshadowingTotal, `SELECT COUNT(*) FROM entries WHERE has_foreshadowing=1`},
		{&result.EdgesTotal, `SELECT COUNT(*) FROM edges`},
		{&result.InvalidTotal, `SELECT COUNT(*) FROM invalid_refs`},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.q).Scan(c.dst); err != nil {
			return nil, err
		}
	}
	return core.FilterStats(result, opts.Fields), nil
}

func queryStrings(db dbExecer, q string, args ...any) ([]string, error) {
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func isFieldActive(field string, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

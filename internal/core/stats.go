package core

import "fmt"

// StatsOptions controls which fields to return.
type StatsOptions struct {
	Fields []string // nil/empty = all
}

// StatsResult contains project statistics.
type StatsResult struct {
	EntriesTotal       int `json:"entries_total"`
	ContentTotal       int `json:"content_total"`
	SettingsTotal      int `json:"settings_total"`
	SubdirectoryTotal  int `json:"subdirectory_total"`
	CharactersTotal    int `json:"characters_total"`
	GlossaryTotal      int `json:"glossary_total"`
	ForeshadowingTotal int `json:"foreshadowing_total"`
	EdgesTotal         int `json:"edges_total"`
	InvalidTotal       int `json:"invalid_total"`
}

var validStatsFields = map[string]bool{
	"entries_total":       true,
	"content_total":       true,
	"settings_total":      true,
	"subdirectory_total":  true,
	"characters_total":    true,
	"glossary_total":      true,
	"foreshadowing_total": true,
	"edges_total":         true,
	"invalid_total":       true,
}

// ValidateStatsFields rejects unknown field names.
func ValidateStatsFields(fields []string) error {
	for _, f := range fields {
		if !validStatsFields[f] {
			return &ArgumentError{Name: "fields", Reason: fmt.Sprintf("unknown stats field: %s", f)}
		}
	}
	return nil
}

// Stats returns aggregate statistics for the loaded project.
func (p *Project) Stats(opts StatsOptions) (*StatsResult, error) {
	if err := ValidateStatsFields(opts.Fields); err != nil {
		return nil, err
	}

	result := &StatsResult{}
	for _, e := range p.Files.Entries() {
		result.EntriesTotal++
		switch e.Kind {
		case KindContent:
			result.ContentTotal++
		case KindSetting:
			result.SettingsTotal++
		case KindSubdirectory:
			result.SubdirectoryTotal++
		}
		if e.IsCharacter {
			result.CharactersTotal++
		}
		if e.Glossary {
			result.GlossaryTotal++
		}
		if e.HasForeshadowing {
			result.ForeshadowingTotal++
		}
	}
	result.EdgesTotal = len(p.Refs.Edges())
	for _, src := range p.Refs.Sources() {
		result.InvalidTotal += len(p.Refs.GetInvalidReferences(src))
	}

	return FilterStats(result, opts.Fields), nil
}

// FilterStats zeroes every field not named in fields. An empty list keeps all.
func FilterStats(r *StatsResult, fields []string) *StatsResult {
	out := *r
	if !isFieldActive("entries_total", fields) {
		out.EntriesTotal = 0
	}
	if !isFieldActive("content_total", fields) {
		out.ContentTotal = 0
	}
	if !isFieldActive("settings_total", fields) {
		out.SettingsTotal = 0
	}
	if !isFieldActive("subdirectory_total", fields) {
		out.SubdirectoryTotal = 0
	}
	if !isFieldActive("characters_total", fields) {
		out.CharactersTotal = 0
	}
	if !isFieldActive("glossary_total", fields) {
		out.GlossaryTotal = 0
	}
	if !isFieldActive("foreshadowing_total", fields) {
		out.ForeshadowingTotal = 0
	}
	if !isFieldActive("edges_total", fields) {
		out.EdgesTotal = 0
	}
	if !isFieldActive("invalid_total", fields) {
		out.InvalidTotal = 0
	}
	return &out
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

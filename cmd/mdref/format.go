package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ryotapoi/mdref/internal/core"
	"github.com/ryotapoi/mdref/internal/snapshot"
)

// parseFields splits a comma-separated field string into a slice.
// Returns nil for empty input.
func parseFields(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateFormat checks that format is "json" or "text".
func validateFormat(format string) error {
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %q (must be json or text)", format)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printList(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}

// --- refs ---

type refsOutput struct {
	Path         string   `json:"path"`
	References   []string `json:"references"`
	ReferencedBy []string `json:"referenced_by"`
	Invalid      []string `json:"invalid"`
}

func printRefsText(w io.Writer, r refsOutput) error {
	fmt.Fprintf(w, "path: %s\n", r.Path)
	printList(w, "references", r.References)
	printList(w, "referenced_by", r.ReferencedBy)
	if len(r.Invalid) > 0 {
		printList(w, "invalid", r.Invalid)
	}
	return nil
}

// --- classify ---

type classifyOutput struct {
	From string `json:"from"`
	Link string `json:"link"`
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
}

func printClassifyText(w io.Writer, c classifyOutput) error {
	fmt.Fprintf(w, "kind: %s\n", c.Kind)
	if c.Path != "" {
		fmt.Fprintf(w, "path: %s\n", c.Path)
	}
	return nil
}

// --- check ---

func printDiagnoseText(w io.Writer, r *core.DiagnoseResult, fields []string) error {
	show := fieldSet(fields, []string{"invalid_references", "untracked", "missing"})
	if show["invalid_references"] {
		fmt.Fprintln(w, "invalid_references:")
		if len(r.InvalidReferences) == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		for _, ir := range r.InvalidReferences {
			fmt.Fprintf(w, "  %s:\n", ir.Source)
			for _, t := range ir.Targets {
				fmt.Fprintf(w, "    - %s\n", t)
			}
		}
	}
	if show["untracked"] {
		printList(w, "untracked", r.Untracked)
	}
	if show["missing"] {
		printList(w, "missing", r.Missing)
	}
	return nil
}

// --- rename ---

func printReportText(w io.Writer, from, to string, r *core.RewriteReport) error {
	fmt.Fprintf(w, "renamed: %s -> %s\n", from, to)
	fmt.Fprintf(w, "scanned: %d\n", r.TotalScannedFiles)
	printList(w, "updated", r.UpdatedFiles)
	if len(r.FailedFiles) > 0 {
		fmt.Fprintln(w, "failed:")
		for _, f := range r.FailedFiles {
			fmt.Fprintf(w, "  - %s: %v\n", f.Path, f.Err)
		}
	}
	return nil
}

// --- build ---

type buildOutput struct {
	*snapshot.BuildInfo
	Stats *core.StatsResult `json:"stats"`
}

func printBuildText(w io.Writer, b buildOutput) error {
	fmt.Fprintf(w, "build_id: %s\n", b.ID)
	fmt.Fprintf(w, "entries: %d\n", b.Stats.EntriesTotal)
	fmt.Fprintf(w, "edges: %d\n", b.Stats.EdgesTotal)
	fmt.Fprintf(w, "invalid: %d\n", b.Stats.InvalidTotal)
	return nil
}

// --- query ---

func printQueryText(w io.Writer, r *snapshot.QueryResult, fields []string) error {
	show := fieldSet(fields, []string{"entry", "references", "referenced_by", "invalid"})
	fmt.Fprintf(w, "path: %s\n", r.Path)
	if show["entry"] {
		if r.Entry == nil {
			fmt.Fprintln(w, "entry: (not indexed)")
		} else {
			fmt.Fprintln(w, "entry:")
			fmt.Fprintf(w, "  kind: %s\n", r.Entry.Kind)
			fmt.Fprintf(w, "  display_name: %s\n", r.Entry.DisplayName)
			if r.Entry.IsCharacter {
				fmt.Fprintln(w, "  character: true")
			}
			if r.Entry.Glossary {
				fmt.Fprintln(w, "  glossary: true")
			}
			if r.Entry.HasForeshadowing {
				fmt.Fprintln(w, "  foreshadowing: true")
			}
		}
	}
	if show["references"] {
		printList(w, "references", r.References)
	}
	if show["referenced_by"] {
		printList(w, "referenced_by", r.ReferencedBy)
	}
	if show["invalid"] && len(r.Invalid) > 0 {
		printList(w, "invalid", r.Invalid)
	}
	return nil
}

// --- stats ---

func printStatsText(w io.Writer, r *core.StatsResult, fields []string) error {
	show := fieldSet(fields, statsFieldOrder)
	values := map[string]int{
		"entries_total":       r.EntriesTotal,
		"content_total":       r.ContentTotal,
		"settings_total":      r.SettingsTotal,
		"subdirectory_total":  r.SubdirectoryTotal,
		"characters_total":    r.CharactersTotal,
		"glossary_total":      r.GlossaryTotal,
		"foreshadowing_total": r.ForeshadowingTotal,
		"edges_total":         r.EdgesTotal,
		"invalid_total":       r.InvalidTotal,
	}
	for _, f := range statsFieldOrder {
		if show[f] {
			fmt.Fprintf(w, "%s: %d\n", f, values[f])
		}
	}
	return nil
}

func buildStatsMap(r *core.StatsResult, fields []string) map[string]int {
	var all map[string]int
	data, _ := json.Marshal(r)
	_ = json.Unmarshal(data, &all)
	show := fieldSet(fields, statsFieldOrder)
	m := make(map[string]int, len(all))
	for k, v := range all {
		if show[k] {
			m[k] = v
		}
	}
	return m
}

var statsFieldOrder = []string{
	"entries_total",
	"content_total",
	"settings_total",
	"subdirectory_total",
	"characters_total",
	"glossary_total",
	"foreshadowing_total",
	"edges_total",
	"invalid_total",
}

// fieldSet returns a set of fields to show. If fields is nil/empty, all fields are shown.
func fieldSet(fields []string, all []string) map[string]bool {
	if len(fields) == 0 {
		fields = all
	}
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return m
}

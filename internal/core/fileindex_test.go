package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/mdref/internal/core"
	"github.com/ryotapoi/mdref/internal/fsys"
	"github.com/ryotapoi/mdref/internal/sidecar"
)

func TestFileIndex_Build(t *testing.T) {
	p, _ := newBasicProject(t)

	assert.Equal(t, 6, p.Files.Size())

	hero, ok := p.Files.Lookup("settings/character1.md")
	require.True(t, ok)
	assert.Equal(t, core.ProjectFileEntry{
		Path:        "settings/character1.md",
		DisplayName: "Hero",
		Kind:        core.KindSetting,
		IsCharacter: true,
	}, hero)

	world, ok := p.Files.Lookup("settings/world.md")
	require.True(t, ok)
	assert.True(t, world.Glossary)
	assert.True(t, world.HasForeshadowing)
	assert.Equal(t, "world.md", world.DisplayName)

	dir, ok := p.Files.Lookup("contents")
	require.True(t, ok)
	assert.Equal(t, core.KindSubdirectory, dir.Kind)

	// On disk but listed in no sidecar.
	_, ok = p.Files.Lookup("notes/untracked.md")
	assert.False(t, ok)
}

func TestFileIndex_LookupNormalizes(t *testing.T) {
	p, _ := newBasicProject(t)
	_, ok := p.Files.Lookup("./settings//world.md")
	assert.True(t, ok)
}

func TestFileIndex_Entries(t *testing.T) {
	p, _ := newBasicProject(t)
	var paths []string
	for _, e := range p.Files.Entries() {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{
		"contents",
		"contents/chapter1.md",
		"contents/chapter2.md",
		"settings",
		"settings/character1.md",
		"settings/world.md",
	}, paths)
}

func TestFileIndex_EmptyProject(t *testing.T) {
	p, _ := newProject(t, map[string]string{"README.md": "# empty"})
	assert.Equal(t, 0, p.Files.Size())
	assert.Empty(t, p.Files.Entries())
}

func TestFileIndex_DuplicateNameLastWins(t *testing.T) {
	p, _ := newProject(t, map[string]string{
		".meta": "files:\n  - name: a.md\n    type: content\n  - name: a.md\n    type: setting\n",
	})
	e, ok := p.Files.Lookup("a.md")
	require.True(t, ok)
	assert.Equal(t, core.KindSetting, e.Kind)
	assert.Equal(t, 1, p.Files.Size())
}

func TestFileIndex_BrokenSidecarSkipped(t *testing.T) {
	p, _ := newProject(t, map[string]string{
		"good/.meta": "files:\n  - name: a.md\n    type: content\n",
		"bad/.meta":  "files:\n  - name: b.md\n    type: unknown\n",
		"ugly/.meta": "files: [unterminated\n",
	})
	_, ok := p.Files.Lookup("good/a.md")
	assert.True(t, ok)
	_, ok = p.Files.Lookup("bad/b.md")
	assert.False(t, ok)
	assert.Equal(t, 1, p.Files.Size())
}

func TestFileIndex_UnreadableSidecarSkipped(t *testing.T) {
	mem := fsys.NewMem(map[string]string{
		"a/.meta": "files:\n  - name: x.md\n    type: content\n",
		"b/.meta": "files:\n  - name: y.md\n    type: content\n",
	})
	mem.FailRead("a/.meta", errors.New("permission denied"))
	cfg := core.DefaultConfig()
	x := core.NewFileIndex(mem, sidecar.New(mem, cfg.MetaFile), cfg)

	require.NoError(t, x.Build())
	_, ok := x.Lookup("b/y.md")
	assert.True(t, ok)
	assert.Equal(t, 1, x.Size())
}

func TestFileIndex_SkipsDataAndExcludedDirs(t *testing.T) {
	mem := fsys.NewMem(map[string]string{
		".mdref/.meta":   "files:\n  - name: hidden.md\n    type: content\n",
		"drafts/.meta":   "files:\n  - name: d.md\n    type: content\n",
		"contents/.meta": "files:\n  - name: c.md\n    type: content\n",
	})
	cfg := core.DefaultConfig()
	cfg.Exclude.Paths = []string{"drafts/*", "drafts"}
	x := core.NewFileIndex(mem, sidecar.New(mem, cfg.MetaFile), cfg)

	require.NoError(t, x.Build())
	var paths []string
	for _, e := range x.Entries() {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"contents/c.md"}, paths)
}

func TestFileIndex_UpsertRemove(t *testing.T) {
	p, _ := newBasicProject(t)

	p.Files.Upsert("settings/new.md", core.ProjectFileEntry{DisplayName: "new.md", Kind: core.KindSetting})
	e, ok := p.Files.Lookup("settings/new.md")
	require.True(t, ok)
	assert.Equal(t, "settings/new.md", e.Path)
	assert.Equal(t, 7, p.Files.Size())

	p.Files.Remove("settings/new.md")
	_, ok = p.Files.Lookup("settings/new.md")
	assert.False(t, ok)

	// Unknown path is a no-op.
	p.Files.Remove("settings/none.md")
	assert.Equal(t, 6, p.Files.Size())
}

func TestFileIndex_RebuildIsIdempotent(t *testing.T) {
	p, _ := newBasicProject(t)
	before := p.Files.Entries()
	require.NoError(t, p.Files.Build())
	assert.Equal(t, before, p.Files.Entries())
}

func TestFileIndex_OnChange(t *testing.T) {
	p, _ := newBasicProject(t)

	var got []core.IndexChange
	stop := p.Files.OnChange(func(c core.IndexChange) { got = append(got, c) })

	p.Files.Upsert("a.md", core.ProjectFileEntry{Kind: core.KindContent})
	p.Files.Remove("a.md")
	p.Files.Remove("a.md")
	require.NoError(t, p.Files.Build())
	p.Files.Clear()

	require.Len(t, got, 4)
	assert.Equal(t, core.IndexChange{Kind: core.ChangeUpdated, Paths: []string{"a.md"}}, got[0])
	assert.Equal(t, core.IndexChange{Kind: core.ChangeRemoved, Paths: []string{"a.md"}}, got[1])
	assert.Equal(t, core.ChangeRebuilt, got[2].Kind)
	assert.Equal(t, core.ChangeCleared, got[3].Kind)
	assert.Equal(t, 0, p.Files.Size())

	stop()
	p.Files.Upsert("b.md", core.ProjectFileEntry{})
	assert.Len(t, got, 4)
}

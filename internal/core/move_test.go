package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/mdref/internal/core"
)

func TestRenameFile_SameDirectory(t *testing.T) {
	p, mem := newBasicProject(t)
	const renamed = "settings/character1_renamed.md"

	report, err := p.RenameFile(heroOld, renamed)
	require.NoError(t, err)
	assert.True(t, report.Success())

	// Disk.
	assert.False(t, mem.Exists(heroOld))
	assert.True(t, mem.Exists(renamed))
	assert.Contains(t, content(t, mem, "contents/chapter1.md"), "[hero](../settings/character1_renamed.md)")
	assert.Contains(t, content(t, mem, "contents/chapter2.md"), "[Hero](settings/character1_renamed.md)")

	// Sidecars.
	settings := loadMeta(t, p, "settings")
	assert.Equal(t, -1, settings.Find("character1.md"))
	i := settings.Find("character1_renamed.md")
	require.GreaterOrEqual(t, i, 0)
	require.NotNil(t, settings.Files[i].Character)
	assert.Equal(t, "Hero", settings.Files[i].Character.DisplayName)
	assert.Equal(t, []string{renamed, "settings/world.md"}, entryRefs(t, p, "contents/chapter1.md"))

	// Indexes.
	_, ok := p.Files.Lookup(heroOld)
	assert.False(t, ok)
	e, ok := p.Files.Lookup(renamed)
	require.True(t, ok)
	assert.Equal(t, "Hero", e.DisplayName)

	assert.Equal(t, []string{renamed, "settings/world.md"}, p.Refs.GetReferences("contents/chapter1.md").References)
	assert.Equal(t, []string{"contents/chapter1.md", "contents/chapter2.md"}, p.Refs.GetReferences(renamed).ReferencedBy)
	assert.Empty(t, p.Refs.GetReferences(heroOld).ReferencedBy)
	require.NoError(t, p.Refs.CheckConsistency())
}

func TestRenameFile_MatchesRebuild(t *testing.T) {
	p, _ := newBasicProject(t)

	_, err := p.RenameFile(heroOld, "cast/hero.md")
	require.NoError(t, err)
	entries, edges := p.Files.Entries(), p.Refs.Edges()

	require.NoError(t, p.Rebuild())
	assert.Equal(t, entries, p.Files.Entries())
	assert.Equal(t, edges, p.Refs.Edges())
}

func TestRenameFile_AcrossDirectories(t *testing.T) {
	p, mem := newBasicProject(t)
	const moved = "cast/hero.md"

	report, err := p.RenameFile(heroOld, moved)
	require.NoError(t, err)
	assert.True(t, report.Success())

	// The moved file's own relative link still reaches world.md.
	assert.Contains(t, content(t, mem, moved), "[the world](../settings/world.md)")
	assert.Contains(t, report.UpdatedFiles, moved)

	assert.Contains(t, content(t, mem, "contents/chapter1.md"), "[hero](../cast/hero.md)")
	assert.Contains(t, content(t, mem, "README.md"), "[the hero](cast/hero.md)")

	assert.Equal(t, -1, loadMeta(t, p, "settings").Find("character1.md"))
	cast := loadMeta(t, p, "cast")
	require.Len(t, cast.Files, 1)
	assert.Equal(t, "hero.md", cast.Files[0].Name)
	assert.Equal(t, core.KindSetting, cast.Files[0].Type)

	e, ok := p.Files.Lookup(moved)
	require.True(t, ok)
	assert.True(t, e.IsCharacter)
	assert.Equal(t, []string{"contents/chapter1.md", "contents/chapter2.md"}, p.Refs.GetReferences(moved).ReferencedBy)
}

func TestRenameFile_MovesOutgoingReferences(t *testing.T) {
	p, mem := newBasicProject(t)
	const moved = "contents/part1/chapter1.md"

	report, err := p.RenameFile("contents/chapter1.md", moved)
	require.NoError(t, err)
	assert.True(t, report.Success())

	text := content(t, mem, moved)
	assert.Contains(t, text, "[hero](../../settings/character1.md)")
	assert.Contains(t, text, "[the past](../../settings/character1.md#past)")
	assert.Contains(t, text, `[world](settings/world.md "The World")`)
	assert.Contains(t, text, "[the wiki](https://example.com/wiki)")

	assert.Equal(t, []string{"settings/character1.md", "settings/world.md"}, p.Refs.GetReferences(moved).References)
	assert.Empty(t, p.Refs.GetReferences("contents/chapter1.md").References)
	assert.Equal(t, []string{"contents/chapter2.md", moved}, p.Refs.GetReferences("settings/character1.md").ReferencedBy)
	require.NoError(t, p.Refs.CheckConsistency())
}

func TestRenameFile_RelativeReferenceOfMovedEntry(t *testing.T) {
	p, _ := newBasicProject(t)
	const moved = "archive/chapter2.md"

	_, err := p.RenameFile("contents/chapter2.md", moved)
	require.NoError(t, err)

	assert.Equal(t, []string{"../settings/character1.md", "settings/missing.md", "https://example.com/reference"},
		entryRefs(t, p, moved))
	assert.Equal(t, []string{"settings/character1.md", "settings/missing.md"}, p.Refs.GetReferences(moved).References)
	assert.Equal(t, []string{"settings/missing.md"}, p.Refs.GetInvalidReferences(moved))
}

func TestRenameFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     error
	}{
		{"not registered", "notes/untracked.md", "notes/other.md", core.ErrNotFound},
		{"directory", "settings", "characters", core.ErrUnsupported},
		{"destination registered", heroOld, "settings/world.md", core.ErrAlreadyExists},
		{"destination on disk", heroOld, "notes/untracked.md", core.ErrAlreadyExists},
		{"same path", heroOld, heroOld, core.ErrInvalidArgument},
		{"escaping", heroOld, "../hero.md", core.ErrInvalidArgument},
		{"empty", "", "a.md", core.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mem := newBasicProject(t)
			before := mem.Paths()

			report, err := p.RenameFile(tt.old, tt.new)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, mem.Paths())
		})
	}
}

func TestRenameFile_MissingOnDisk(t *testing.T) {
	p, mem := newBasicProject(t)
	require.NoError(t, mem.Rename(heroOld, "elsewhere.md"))

	_, err := p.RenameFile(heroOld, heroNew)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, ok := p.Files.Lookup(heroOld)
	assert.True(t, ok)
}

func TestRenameFile_SidecarSaveFailureRollsBack(t *testing.T) {
	p, mem := newBasicProject(t)
	mem.FailWrite("settings/.meta", errors.New("read-only"))
	original := content(t, mem, heroOld)

	_, err := p.RenameFile(heroOld, heroNew)
	require.Error(t, err)

	assert.Equal(t, original, content(t, mem, heroOld))
	assert.False(t, mem.Exists(heroNew))
	_, ok := p.Files.Lookup(heroOld)
	assert.True(t, ok)
	assert.Contains(t, content(t, mem, "contents/chapter2.md"), "[Hero](settings/character1.md)")
}

func TestRenameFile_DestinationSidecarFailureRollsBack(t *testing.T) {
	p, mem := newBasicProject(t)
	mem.FailWrite("cast/.meta", errors.New("read-only"))

	_, err := p.RenameFile(heroOld, "cast/hero.md")
	require.Error(t, err)

	assert.True(t, mem.Exists(heroOld))
	assert.False(t, mem.Exists("cast/hero.md"))
	assert.GreaterOrEqual(t, loadMeta(t, p, "settings").Find("character1.md"), 0)
}

func TestRenameFile_RewriteFailuresReported(t *testing.T) {
	p, mem := newBasicProject(t)
	mem.FailWrite("contents/.meta", errors.New("read-only"))

	report, err := p.RenameFile(heroOld, heroNew)
	require.NoError(t, err)

	assert.False(t, report.Success())
	// The unsaved sidecar keeps its old edges.
	assert.Equal(t, []string{"settings/character1.md", "settings/world.md"}, p.Refs.GetReferences("contents/chapter1.md").References)
	// Content files were still rewritten.
	assert.Contains(t, content(t, mem, "contents/chapter2.md"), "[Hero](settings/hero.md)")
}

func TestProject_Clear(t *testing.T) {
	p, _ := newBasicProject(t)
	p.Clear()
	assert.Equal(t, 0, p.Files.Size())
	assert.Empty(t, p.Refs.Edges())

	require.NoError(t, p.Rebuild())
	assert.Equal(t, 6, p.Files.Size())
}

func TestProject_Independent(t *testing.T) {
	a, _ := newBasicProject(t)
	b, _ := newBasicProject(t)

	_, err := a.RenameFile(heroOld, heroNew)
	require.NoError(t, err)

	_, ok := b.Files.Lookup(heroOld)
	assert.True(t, ok)
	assert.Equal(t, []string{"contents/chapter1.md", "contents/chapter2.md"}, b.Refs.GetReferences(heroOld).ReferencedBy)
}

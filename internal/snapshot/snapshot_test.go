package snapshot

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/mdref/internal/core"
	"github.com/ryotapoi/mdref/internal/fsys"
	"github.com/ryotapoi/mdref/internal/sidecar"
	"github.com/ryotapoi/mdref/internal/testutil"
)

func loadBasic(t *testing.T) *core.Project {
	t.Helper()
	root := testutil.CopyFixture(t, "project_basic")
	cfg := core.DefaultConfig()
	g := fsys.NewOS(root)
	p := core.NewProject(root, g, sidecar.New(g, cfg.MetaFile), cfg)
	require.NoError(t, p.Rebuild())
	return p
}

func writeAndOpen(t *testing.T, p *core.Project) (*BuildInfo, *Snapshot) {
	t.Helper()
	info, err := Write(p)
	require.NoError(t, err)
	s, err := Open(p.Root)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return info, s
}

func TestWrite_BuildInfo(t *testing.T) {
	p := loadBasic(t)
	info, s := writeAndOpen(t, p)

	_, err := uuid.Parse(info.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Root, info.Root)

	stored, err := s.BuildInfo()
	require.NoError(t, err)
	assert.Equal(t, info.ID, stored.ID)
	assert.True(t, info.CreatedAt.Equal(stored.CreatedAt))

	_, err = os.Stat(Path(p.Root) + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWrite_ReplacesPrevious(t *testing.T) {
	p := loadBasic(t)
	first, err := Write(p)
	require.NoError(t, err)
	second, s := writeAndOpen(t, p)

	assert.NotEqual(t, first.ID, second.ID)
	stats, err := s.Stats(core.StatsOptions{})
	require.NoError(t, err)
	assert.Equal(t, 6, stats.EntriesTotal)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, core.ErrIndexMissing)
	assert.EqualError(t, err, "index not found: run 'mdref build' first")
}

func TestSnapshot_MatchesLiveIndex(t *testing.T) {
	p := loadBasic(t)
	_, s := writeAndOpen(t, p)

	for _, e := range p.Files.Entries() {
		got, err := s.Entry(e.Path)
		require.NoError(t, err)
		require.NotNil(t, got, e.Path)
		assert.Equal(t, e, *got)

		refs, err := s.References(e.Path)
		require.NoError(t, err)
		assert.Equal(t, p.Refs.GetReferences(e.Path), refs, e.Path)
	}

	live, err := p.Stats(core.StatsOptions{})
	require.NoError(t, err)
	stored, err := s.Stats(core.StatsOptions{})
	require.NoError(t, err)
	assert.Equal(t, live, stored)
}

func TestSnapshot_Query(t *testing.T) {
	p := loadBasic(t)
	_, s := writeAndOpen(t, p)

	result, err := s.Query("contents/chapter2.md", QueryOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Entry)
	assert.Equal(t, core.KindContent, result.Entry.Kind)
	assert.Equal(t, []string{"settings/character1.md", "settings/missing.md"}, result.References)
	assert.Empty(t, result.ReferencedBy)
	assert.Equal(t, []string{"settings/missing.md"}, result.Invalid)

	// Not indexed, but referenced.
	result, err = s.Query("settings/missing.md", QueryOptions{Fields: []string{"referenced_by"}})
	require.NoError(t, err)
	assert.Nil(t, result.Entry)
	assert.Nil(t, result.References)
	assert.Equal(t, []string{"contents/chapter2.md"}, result.ReferencedBy)
}

func TestSnapshot_QueryErrors(t *testing.T) {
	p := loadBasic(t)
	_, s := writeAndOpen(t, p)

	_, err := s.Query("nowhere.md", QueryOptions{})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.Query("../escape.md", QueryOptions{})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = s.Query("settings/world.md", QueryOptions{Fields: []string{"twohop"}})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestSnapshot_StatsFields(t *testing.T) {
	p := loadBasic(t)
	_, s := writeAndOpen(t, p)

	stats, err := s.Stats(core.StatsOptions{Fields: []string{"invalid_total"}})
	require.NoError(t, err)
	assert.Equal(t, &core.StatsResult{InvalidTotal: 1}, stats)
}

package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/mdref/internal/core"
	"github.com/ryotapoi/mdref/internal/fsys"
	"github.com/ryotapoi/mdref/internal/sidecar"
	"github.com/ryotapoi/mdref/internal/testutil"
)

// newProject loads an in-memory project holding files.
func newProject(t *testing.T, files map[string]string) (*core.Project, *fsys.Mem) {
	t.Helper()
	mem := fsys.NewMem(files)
	cfg := core.DefaultConfig()
	p := core.NewProject(t.TempDir(), mem, sidecar.New(mem, cfg.MetaFile), cfg)
	require.NoError(t, p.Rebuild())
	return p, mem
}

// newBasicProject loads testdata/project_basic into memory.
func newBasicProject(t *testing.T) (*core.Project, *fsys.Mem) {
	t.Helper()
	return newProject(t, testutil.LoadFixture(t, "project_basic"))
}

func content(t *testing.T, mem *fsys.Mem, p string) string {
	t.Helper()
	s, ok := mem.Content(p)
	require.True(t, ok, "missing file %s", p)
	return s
}

func loadMeta(t *testing.T, p *core.Project, dir string) *core.DirectoryMeta {
	t.Helper()
	meta, err := p.Store.Load(dir)
	require.NoError(t, err)
	require.NotNil(t, meta, "no sidecar in %q", dir)
	return meta
}

func entryRefs(t *testing.T, p *core.Project, entryPath string) []string {
	t.Helper()
	meta := loadMeta(t, p, core.DirOf(entryPath))
	i := meta.Find(core.BaseOf(entryPath))
	require.GreaterOrEqual(t, i, 0, "no entry %s", entryPath)
	return meta.Files[i].References
}

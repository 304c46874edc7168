package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/commonlog"
)

func TestConfigure_Verbosity(t *testing.T) {
	defer Configure(0, "")

	Configure(2, "")
	assert.Equal(t, 2, Verbosity())

	Configure(0, "")
	assert.Equal(t, 0, Verbosity())
}

func TestConfigure_Levels(t *testing.T) {
	defer Configure(0, "")

	Configure(0, "")
	l := GetLogger("levels")
	assert.True(t, l.AllowLevel(commonlog.Error))
	assert.True(t, l.AllowLevel(commonlog.Warning))
	assert.False(t, l.AllowLevel(commonlog.Notice))
	assert.False(t, l.AllowLevel(commonlog.Info))

	Configure(1, "")
	assert.True(t, l.AllowLevel(commonlog.Notice))
	assert.False(t, l.AllowLevel(commonlog.Info))

	Configure(2, "")
	assert.True(t, l.AllowLevel(commonlog.Info))
	assert.False(t, l.AllowLevel(commonlog.Debug))

	Configure(3, "")
	assert.True(t, l.AllowLevel(commonlog.Debug))
}

func TestGetLogger(t *testing.T) {
	defer Configure(0, "")
	Configure(0, "")

	assert.NotNil(t, GetLogger("core"))
	assert.NotNil(t, GetLogger(""))
}

func TestConfigure_File(t *testing.T) {
	defer Configure(0, "")

	path := filepath.Join(t.TempDir(), "mdref.log")
	Configure(1, path)
	GetLogger("test").Warning("written to file")

	_, err := os.Stat(path)
	require.NoError(t, err)
}

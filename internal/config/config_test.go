package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/sys", cfg.SysfsRoot)
	assert.Equal(t, "auto", cfg.Color)
	assert.Empty(t, cfg.Nicknames)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sysfs_root: /tmp/fake-sys
color: never
nicknames:
  - sas_address: 5000ccab0401d23f
    nickname: rack2-shelf1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fake-sys", cfg.SysfsRoot)
	assert.Equal(t, "never", cfg.Color)

	nick, ok := cfg.NicknameFor("5000ccab0401d23f")
	require.True(t, ok)
	assert.Equal(t, "rack2-shelf1", nick)

	_, ok = cfg.NicknameFor("unknown")
	assert.False(t, ok)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::: not yaml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

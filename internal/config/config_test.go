package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "machine.toml")
	contents := `
entry_point = 4096
image_path = "program.bin"
load_address = 4096
cache_path = "blocks.cache"
console = "raw"

[extensions]
m = true
a = false
f = false
c = true
zicsr = true
zifencei = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	require.EqualValues(t, 4096, m.EntryPoint)
	require.Equal(t, "program.bin", m.ImagePath)
	require.Equal(t, "raw", m.Console)
	require.True(t, m.Extensions.M)
	require.False(t, m.Extensions.A)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "machine.toml")
	require.NoError(t, os.WriteFile(path, []byte("bogus_key = 1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

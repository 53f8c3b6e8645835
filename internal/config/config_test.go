package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 5555, cfg.Ports.Sync)
	assert.Equal(t, 5556, cfg.Ports.Compare)
	assert.Equal(t, 5557, cfg.Ports.Discovery)
	assert.Equal(t, "DISCOVER_AL_SWAIFE", cfg.Discovery.Token)
	assert.Equal(t, "ALSWAIFE", cfg.Discovery.AppTag)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout())
	assert.Equal(t, 2*time.Second, cfg.DiscoverTimeout())
	assert.Empty(t, cfg.Root)
	assert.Empty(t, cfg.BWLimit)
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := loadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
root = "/srv/alswaife"
bwlimit = "10M"

[ports]
sync = 6000

[discovery]
app_tag = "BRANCH2"

[timeouts]
connect_seconds = 5
`), 0o644))

	cfg, err := loadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/alswaife", cfg.Root)
	assert.Equal(t, "10M", cfg.BWLimit)
	assert.Equal(t, 6000, cfg.Ports.Sync)
	assert.Equal(t, "BRANCH2", cfg.Discovery.AppTag)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout())

	// Untouched fields keep their defaults.
	assert.Equal(t, 5556, cfg.Ports.Compare)
	assert.Equal(t, "DISCOVER_AL_SWAIFE", cfg.Discovery.Token)
	assert.Equal(t, 2*time.Second, cfg.DiscoverTimeout())
}

func TestLoadFromMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("ports = not toml"), 0o644))

	cfg, err := loadFrom(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"100", 100},
		{"100B", 100},
		{"1K", 1024},
		{"1k", 1024},
		{"10M", 10 * 1024 * 1024},
		{"1G", 1024 * 1024 * 1024},
		{"1T", 1024 * 1024 * 1024 * 1024},
		{"1.5K", 1536},
		{" 2M ", 2 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, got, "input %q", tt.input)
	}
}

func TestParseSizeInvalid(t *testing.T) {
	for _, input := range []string{"", "K", "abc", "12X3", "-1", "-1K", "-0.5M"} {
		_, err := ParseSize(input)
		assert.Error(t, err, "input %q", input)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/sparsefeed/pkg/errors"
)

func TestLoaderConfigDefaults(t *testing.T) {
	cfg := NewLoaderConfig("train.libsvm", "libsvm")

	assert.Equal(t, "train.libsvm", cfg.URI)
	assert.Equal(t, 1, cfg.NumParts)
	assert.Equal(t, DefaultChunkSizeBytes, cfg.Performance.ChunkSizeBytes)
	assert.Greater(t, cfg.Performance.Workers, 0)
	require.NoError(t, cfg.Validate())
}

func TestLoaderConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LoaderConfig)
		wantErr bool
	}{
		{"valid", func(c *LoaderConfig) {}, false},
		{"missing uri", func(c *LoaderConfig) { c.URI = "" }, true},
		{"zero parts", func(c *LoaderConfig) { c.NumParts = 0 }, true},
		{"part out of range", func(c *LoaderConfig) { c.PartIndex = 4; c.NumParts = 4 }, true},
		{"negative workers", func(c *LoaderConfig) { c.Performance.Workers = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewLoaderConfig("data.txt", "libsvm")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("SPARSEFEED_TEST_URI", "/data/train.libsvm")

	dir := t.TempDir()
	path := filepath.Join(dir, "loader.yaml")
	content := "uri: ${SPARSEFEED_TEST_URI}\nformat: libsvm\nperformance:\n  workers: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var cfg LoaderConfig
	require.NoError(t, Load(path, &cfg))
	cfg.ApplyDefaults()

	assert.Equal(t, "/data/train.libsvm", cfg.URI)
	assert.Equal(t, "libsvm", cfg.Format)
	assert.Equal(t, 3, cfg.Performance.Workers)
	assert.Equal(t, DefaultChunkSizeBytes, cfg.Performance.ChunkSizeBytes)
}

func TestLoadFailuresAreConfigTyped(t *testing.T) {
	var cfg LoaderConfig
	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("uri: [unclosed"), 0o644))
	err = Load(bad, &cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := NewLoaderConfig("s3://bucket/key", "libsvm")
	cfg.PartIndex = 2
	cfg.NumParts = 8
	require.NoError(t, Save(path, cfg))

	var loaded LoaderConfig
	require.NoError(t, Load(path, &loaded))
	assert.Equal(t, cfg.URI, loaded.URI)
	assert.Equal(t, cfg.PartIndex, loaded.PartIndex)
	assert.Equal(t, cfg.NumParts, loaded.NumParts)
}

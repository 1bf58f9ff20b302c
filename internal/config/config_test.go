package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Retrieve.TopK)
	assert.Equal(t, 30, cfg.Retrieve.RetrieveM)
	assert.Contains(t, cfg.Citations.DeniedAuthorityTiers, "A1")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "retrieve:\n  top_k: 8\n  retrieve_m: 40\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Retrieve.TopK)
	assert.Equal(t, 40, cfg.Retrieve.RetrieveM)
	assert.Equal(t, 10, cfg.Retrieve.RerankN, "unset fields keep defaults")
}

func TestValidateRejectsBadTopK(t *testing.T) {
	cfg := Default()
	cfg.Retrieve.TopK = 0
	assert.Error(t, cfg.Validate())
}

package vector

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEmbeddingFile(t *testing.T, rows [][]float32) string {
	t.Helper()
	var buf bytes.Buffer
	for _, row := range rows {
		for _, v := range row {
			require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float32bits(v)))
		}
	}
	path := filepath.Join(t.TempDir(), "embeddings.bin")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadEmbeddingsAlignsRowsToChunkIDs(t *testing.T) {
	path := writeEmbeddingFile(t, [][]float32{
		{1, 0, 0},
		{0, 1, 0},
	})

	idx, err := LoadEmbeddings(path, []string{"c1", "c2"}, 3)
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, 2, idx.Len())
}

func TestLoadEmbeddingsMissingFileReturnsNilNotError(t *testing.T) {
	idx, err := LoadEmbeddings(filepath.Join(t.TempDir(), "missing.bin"), []string{"c1"}, 3)
	require.NoError(t, err)
	assert.Nil(t, idx)
}

func TestLoadEmbeddingsEmptyPathReturnsNilNotError(t *testing.T) {
	idx, err := LoadEmbeddings("", []string{"c1"}, 3)
	require.NoError(t, err)
	assert.Nil(t, idx)
}

func TestLoadEmbeddingsTruncatedFileErrors(t *testing.T) {
	path := writeEmbeddingFile(t, [][]float32{{1, 0, 0}})
	_, err := LoadEmbeddings(path, []string{"c1", "c2"}, 3)
	assert.Error(t, err)
}

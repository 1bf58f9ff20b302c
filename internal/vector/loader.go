package vector

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	ipretrieveerrors "github.com/ipassist/retrieval-core/internal/errors"
)

// LoadEmbeddings builds an Index from the embedding artifact of spec.md
// §6: a dense matrix file of shape (N_chunks, D), row i aligned to the
// i-th record of the chunk file, little-endian float32. chunkIDs must be
// in the same ingest order as the chunk file's rows (corpus.Chunk.RowIndex).
//
// A missing embeddings file is not fatal: it returns a nil *Index, letting
// the Hybrid Retriever degrade the semantic component to zero per spec.md
// §4.7 Failure semantics ("Missing dense index: skip semantic component").
func LoadEmbeddings(path string, chunkIDs []string, dims int) (*Index, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, ipretrieveerrors.New(ipretrieveerrors.ErrCodeCorpusAbsent, "embeddings file not found", err)
	}
	defer f.Close()

	if dims <= 0 {
		return nil, fmt.Errorf("load embeddings: dimensions must be positive, got %d", dims)
	}

	idx := New(dims)
	reader := bufio.NewReaderSize(f, 1<<20)
	rowBytes := make([]byte, 4*dims)
	row := make([]float32, dims)

	for rowIdx := 0; rowIdx < len(chunkIDs); rowIdx++ {
		if _, err := readFull(reader, rowBytes); err != nil {
			return nil, ipretrieveerrors.New(ipretrieveerrors.ErrCodeFileCorrupt,
				fmt.Sprintf("embeddings file truncated at row %d", rowIdx), err)
		}
		for i := 0; i < dims; i++ {
			bits := binary.LittleEndian.Uint32(rowBytes[i*4 : i*4+4])
			row[i] = math.Float32frombits(bits)
		}
		if err := idx.Add(chunkIDs[rowIdx], row); err != nil {
			return nil, fmt.Errorf("load embeddings row %d: %w", rowIdx, err)
		}
	}

	return idx, nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

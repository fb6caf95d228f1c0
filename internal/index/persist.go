package index

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// Vector blob layout: magic, format version, dim, count, then count*dim
// little-endian float32s. The book list lives in a companion JSON file;
// the two artifacts are only valid together.
const (
	blobMagic   = "SDXV"
	blobVersion = uint32(1)
)

// Save persists the vector blob and the book list as two companion files.
// Each file is written to a temp sibling and renamed, so readers never see
// a partial artifact.
func (f *Flat) Save(vectorPath, metaPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := writeAtomic(vectorPath, f.encodeVectors()); err != nil {
		return fmt.Errorf("write vector blob: %w", err)
	}

	meta, err := json.Marshal(f.books)
	if err != nil {
		return fmt.Errorf("encode book list: %w", err)
	}
	if err := writeAtomic(metaPath, meta); err != nil {
		return fmt.Errorf("write book list: %w", err)
	}
	return nil
}

// Load restores an index from its two companion artifacts. A missing file
// is ErrArtifactNotFound; undecodable content or disagreeing lengths is
// ErrCorruptArtifact.
func Load(vectorPath, metaPath string) (*Flat, error) {
	blob, err := readArtifact(vectorPath)
	if err != nil {
		return nil, err
	}
	meta, err := readArtifact(metaPath)
	if err != nil {
		return nil, err
	}

	dim, vectors, err := decodeVectors(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptArtifact, vectorPath, err)
	}

	var books []domain.Book
	if err := json.Unmarshal(meta, &books); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptArtifact, metaPath, err)
	}

	if len(vectors) != len(books) {
		return nil, fmt.Errorf("%w: %d vectors but %d books",
			domain.ErrCorruptArtifact, len(vectors), len(books))
	}

	return &Flat{dim: dim, vectors: vectors, books: books}, nil
}

func readArtifact(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return data, nil
}

func (f *Flat) encodeVectors() []byte {
	header := 4 + 4 + 4 + 4
	buf := make([]byte, header+len(f.vectors)*f.dim*4)
	copy(buf, blobMagic)
	binary.LittleEndian.PutUint32(buf[4:], blobVersion)
	binary.LittleEndian.PutUint32(buf[8:], uint32(f.dim))
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(f.vectors)))

	off := header
	for _, vec := range f.vectors {
		for _, x := range vec {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(x))
			off += 4
		}
	}
	return buf
}

func decodeVectors(data []byte) (int, [][]float32, error) {
	if len(data) < 16 || string(data[:4]) != blobMagic {
		return 0, nil, fmt.Errorf("bad header")
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != blobVersion {
		return 0, nil, fmt.Errorf("unsupported blob version %d", v)
	}
	dim := int(binary.LittleEndian.Uint32(data[8:]))
	count := int(binary.LittleEndian.Uint32(data[12:]))
	if dim <= 0 {
		return 0, nil, fmt.Errorf("non-positive dimension %d", dim)
	}
	// Divide the known payload length instead of multiplying the header
	// fields; two near-max uint32 values would overflow the product.
	payload := len(data) - 16
	if payload%4 != 0 {
		return 0, nil, fmt.Errorf("blob payload %d is not float32-aligned", payload)
	}
	floats := payload / 4
	if count == 0 {
		if floats != 0 {
			return 0, nil, fmt.Errorf("blob size %d does not match dim=%d count=%d",
				len(data), dim, count)
		}
	} else if floats%count != 0 || floats/count != dim {
		return 0, nil, fmt.Errorf("blob size %d does not match dim=%d count=%d",
			len(data), dim, count)
	}

	vectors := make([][]float32, count)
	off := 16
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return dim, vectors, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

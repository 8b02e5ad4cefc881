package faiss

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"ragsearch/internal/domain"
)

// Artifact names inside the persistence directory. Both must be present for
// an index to be loaded.
const (
	IndexFile    = "faiss.index"
	MetadataFile = "metadata.pkl"
)

const formatVersion = 1

var indexMagic = [8]byte{'G', 'O', 'F', 'L', 'A', 'T', 'I', 'X'}

// indexHeader prefixes the vector payload of faiss.index. All fields are
// little endian.
type indexHeader struct {
	Magic     [8]byte
	Version   uint32
	Dimension uint32
	Count     uint64
}

// metadata is the gob payload of metadata.pkl.
type metadata struct {
	Version       int
	Info          domain.IndexInfo
	IndexChecksum string
	Chunks        []domain.Chunk
	EmbedderState []byte
}

func encodeIndex(dimension int, vectors [][]float32) ([]byte, error) {
	var buf bytes.Buffer
	hdr := indexHeader{
		Magic:     indexMagic,
		Version:   formatVersion,
		Dimension: uint32(dimension),
		Count:     uint64(len(vectors)),
	}
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		return nil, err
	}
	row := make([]byte, 4*dimension)
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dimension)
		}
		for j, x := range v {
			binary.LittleEndian.PutUint32(row[4*j:], math.Float32bits(x))
		}
		buf.Write(row)
	}
	return buf.Bytes(), nil
}

func decodeIndex(data []byte) (int, [][]float32, error) {
	r := bytes.NewReader(data)
	var hdr indexHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return 0, nil, fmt.Errorf("read header: %w", err)
	}
	if hdr.Magic != indexMagic {
		return 0, nil, errors.New("bad magic")
	}
	if hdr.Version != formatVersion {
		return 0, nil, fmt.Errorf("unsupported index version %d", hdr.Version)
	}
	dim := int(hdr.Dimension)
	if dim <= 0 {
		return 0, nil, fmt.Errorf("invalid dimension %d", dim)
	}
	payload := data[len(data)-r.Len():]
	if uint64(len(payload)) != hdr.Count*uint64(dim)*4 {
		return 0, nil, fmt.Errorf("payload is %d bytes, header declares %d vectors of dimension %d",
			len(payload), hdr.Count, dim)
	}
	vectors := make([][]float32, hdr.Count)
	for i := range vectors {
		v := make([]float32, dim)
		for j := range v {
			off := (i*dim + j) * 4
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off:]))
		}
		vectors[i] = v
	}
	return dim, vectors, nil
}

func encodeMetadata(m metadata) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeMetadata(data []byte) (metadata, error) {
	var m metadata
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m)
	return m, err
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeAtomic writes data to a temp file beside path and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package classifier

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ArtifactFormat identifies model files written by Save.
const ArtifactFormat = "acsim-decision-tree"

// ArtifactVersion is the current artifact layout.
const ArtifactVersion = 1

// MaxArtifactSize bounds the decompressed payload (64MB).
const MaxArtifactSize = 64 * 1024 * 1024

// ArtifactHeader is the plain-text first line of a model file. The rest of the
// file is the gzip-compressed JSON tree.
type ArtifactHeader struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
	Nodes     int       `json:"nodes"`
	Depth     int       `json:"depth"`
	Samples   int       `json:"samples"`
}

// Save writes the tree to path, replacing any previous artifact.
// The file is written to a temporary sibling and renamed into place.
func Save(path string, t *Tree) error {
	if t == nil || t.Root == nil {
		return ErrModelNotTrained
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling tree: %w", err)
	}

	var compressed bytes.Buffer
	gzw, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := gzw.Write(payload); err != nil {
		return fmt.Errorf("compressing tree: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("closing gzip writer: %w", err)
	}

	hash := sha256.Sum256(compressed.Bytes())
	header := ArtifactHeader{
		Format:    ArtifactFormat,
		Version:   ArtifactVersion,
		CreatedAt: t.TrainedAt,
		Checksum:  "sha256:" + hex.EncodeToString(hash[:]),
		Nodes:     t.NodeCount(),
		Depth:     t.Depth(),
		Samples:   t.Samples,
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling header: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating model file: %w", err)
	}

	_, err = f.Write(append(headerBytes, '\n'))
	if err == nil {
		_, err = f.Write(compressed.Bytes())
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing model file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing model file: %w", err)
	}
	return nil
}

// Load reads a tree saved by Save and verifies its checksum.
// A missing file yields ErrModelNotTrained.
func Load(path string) (*Tree, error) {
	header, compressed, err := readArtifact(path)
	if err != nil {
		return nil, err
	}

	hash := sha256.Sum256(compressed)
	if actual := "sha256:" + hex.EncodeToString(hash[:]); actual != header.Checksum {
		return nil, fmt.Errorf("model checksum mismatch: expected %s, got %s", header.Checksum, actual)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	payload, err := io.ReadAll(io.LimitReader(gzr, MaxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing model: %w", err)
	}
	if len(payload) > MaxArtifactSize {
		return nil, fmt.Errorf("model payload exceeds maximum size of %d bytes", MaxArtifactSize)
	}

	var t Tree
	if err := json.Unmarshal(payload, &t); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if t.Root == nil {
		return nil, fmt.Errorf("model file %s has no tree: %w", path, ErrModelNotTrained)
	}
	return &t, nil
}

// ReadHeader returns just the header of a model file.
func ReadHeader(path string) (*ArtifactHeader, error) {
	header, _, err := readArtifact(path)
	return header, err
}

func readArtifact(path string) (*ArtifactHeader, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("no model at %s: %w", path, ErrModelNotTrained)
		}
		return nil, nil, fmt.Errorf("opening model: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading model header: %w", err)
	}

	var header ArtifactHeader
	if err := json.Unmarshal(bytes.TrimSpace(line), &header); err != nil {
		return nil, nil, fmt.Errorf("parsing model header: %w", err)
	}
	if header.Format != ArtifactFormat {
		return nil, nil, fmt.Errorf("not an acsim model file (format %q)", header.Format)
	}
	if header.Version != ArtifactVersion {
		return nil, nil, fmt.Errorf("unsupported model version %d", header.Version)
	}

	compressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("reading model payload: %w", err)
	}
	return &header, compressed, nil
}

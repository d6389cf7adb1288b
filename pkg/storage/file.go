package storage

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Davincible/rsecc/pkg/reedsolomon"
	"golang.org/x/crypto/blake2b"
)

// ManifestSuffix is appended to an encoded file's name to form the name of
// its manifest.
const ManifestSuffix = ".rsecc.json"

// Manifest records what is needed to decode and verify an encoded file.
// The codec output itself carries no header, so this travels beside it.
type Manifest struct {
	Version       int    `json:"version"`
	Symbols       int    `json:"symbols"`
	PayloadLength int    `json:"payload_length"`
	EncodedLength int    `json:"encoded_length"`
	Chunks        int    `json:"chunks"`
	Digest        string `json:"blake2b_256"`
}

// NewManifest describes payload encoded with nsym ECC bytes per chunk.
func NewManifest(payload []byte, nsym int) Manifest {
	sum := blake2b.Sum256(payload)
	encoded := reedsolomon.EncodedLen(len(payload), nsym)
	return Manifest{
		Version:       1,
		Symbols:       nsym,
		PayloadLength: len(payload),
		EncodedLength: encoded,
		Chunks:        (encoded + reedsolomon.BlockSize - 1) / reedsolomon.BlockSize,
		Digest:        hex.EncodeToString(sum[:]),
	}
}

// Verify checks a decoded payload against the manifest.
func (m Manifest) Verify(payload []byte) error {
	if len(payload) != m.PayloadLength {
		return fmt.Errorf("payload length mismatch: expected %d, got %d", m.PayloadLength, len(payload))
	}

	want, err := hex.DecodeString(m.Digest)
	if err != nil {
		return fmt.Errorf("invalid manifest digest: %w", err)
	}
	sum := blake2b.Sum256(payload)
	if !bytes.Equal(want, sum[:]) {
		return fmt.Errorf("payload digest mismatch")
	}
	return nil
}

// FileStore reads and writes encoded files and their manifests.
type FileStore struct {
	perm os.FileMode
}

func NewFileStore(perm os.FileMode) *FileStore {
	return &FileStore{
		perm: perm,
	}
}

// Save writes data to path, creating parent directories as needed.
func (s *FileStore) Save(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, s.perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (s *FileStore) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// SaveManifest writes m next to the encoded file at path.
func (s *FileStore) SaveManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return s.Save(ManifestPath(path), data)
}

// LoadManifest reads a manifest file.
func (s *FileStore) LoadManifest(manifestPath string) (*Manifest, error) {
	data, err := s.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	if m.Version != 1 {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}

	return &m, nil
}

func (s *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ManifestPath returns the manifest file name for an encoded file.
func ManifestPath(path string) string {
	return path + ManifestSuffix
}

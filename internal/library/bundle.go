package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"zxd/proof"
)

// CompressedProofExt marks zstd-compressed proof bundles; plain .zxp files
// hold the bare JSON document.
const CompressedProofExt = ".zxp.zst"

// SaveProof writes a proof document to path, compressing when the path
// carries the compressed extension.
func SaveProof(path string, m *proof.Model) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding proof: %w", err)
	}
	if strings.HasSuffix(path, CompressedProofExt) {
		var compressed bytes.Buffer
		enc, err := zstd.NewWriter(&compressed)
		if err != nil {
			return fmt.Errorf("creating zstd encoder: %w", err)
		}
		if _, err := enc.Write(data); err != nil {
			enc.Close()
			return fmt.Errorf("compressing proof: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("flushing zstd encoder: %w", err)
		}
		data = compressed.Bytes()
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing proof file: %w", err)
	}
	return nil
}

// LoadProof reads a proof document from path, decompressing when the path
// carries the compressed extension.
func LoadProof(path string) (*proof.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading proof file: %w", err)
	}
	if strings.HasSuffix(path, CompressedProofExt) {
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer dec.Close()
		var plain bytes.Buffer
		if _, err := plain.ReadFrom(dec); err != nil {
			return nil, fmt.Errorf("decompressing proof: %w", err)
		}
		data = plain.Bytes()
	}
	m, err := proof.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

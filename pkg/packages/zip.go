package packages

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/provincie-forge/publicatie/pkg/renderer"
)

// ZipData is the archived publication bundle with its integrity checksum.
type ZipData struct {
	PublicationFilename string
	Filename            string
	Binary              []byte
	Checksum            string
}

// buildZip archives the rendered documents and computes the SHA-256 checksum
// over the raw zip bytes. The archive is named after the main publication
// document.
func buildZip(publicationFilename string, documents []renderer.Document) (*ZipData, error) {
	if len(documents) == 0 {
		return nil, fmt.Errorf("no documents to archive")
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, doc := range documents {
		f, err := w.Create(doc.Filename)
		if err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", doc.Filename, err)
		}
		if _, err := f.Write(doc.Content); err != nil {
			return nil, fmt.Errorf("writing %s to archive: %w", doc.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	content := buf.Bytes()
	sum := sha256.Sum256(content)

	return &ZipData{
		PublicationFilename: publicationFilename,
		Filename:            strings.Replace(publicationFilename, ".xml", ".zip", 1),
		Binary:              content,
		Checksum:            hex.EncodeToString(sum[:]),
	}, nil
}

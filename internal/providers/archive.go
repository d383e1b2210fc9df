package providers

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Subtitle file extensions recognized inside downloaded archives.
var subtitleExtensions = map[string]struct{}{
	".srt": {},
	".ssa": {},
	".ass": {},
	".sub": {},
	".vtt": {},
}

// ExtractSubtitle unwraps a downloaded payload into raw subtitle bytes.
// Zip archives yield their largest subtitle entry, gzip payloads are
// decompressed, and anything else passes through unchanged.
func ExtractSubtitle(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty subtitle payload")
	}
	switch {
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return extractFromZip(data)
	case bytes.HasPrefix(data, []byte{0x1f, 0x8b}):
		return extractFromGzip(data)
	default:
		return data, nil
	}
}

func extractFromZip(data []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var best *zip.File
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name))
		if _, ok := subtitleExtensions[ext]; !ok {
			continue
		}
		if best == nil || file.UncompressedSize64 > best.UncompressedSize64 {
			best = file
		}
	}
	if best == nil {
		return nil, errors.New("zip contains no subtitle file")
	}

	rc, err := best.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %s: %w", best.Name, err)
	}
	defer rc.Close()

	contents, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read zip entry %s: %w", best.Name, err)
	}
	return contents, nil
}

func extractFromGzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer reader.Close()

	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	return contents, nil
}

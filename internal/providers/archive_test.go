package providers

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"testing"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello\n"

func TestExtractSubtitlePlainPassthrough(t *testing.T) {
	got, err := ExtractSubtitle([]byte(sampleSRT))
	if err != nil {
		t.Fatalf("ExtractSubtitle: %v", err)
	}
	if string(got) != sampleSRT {
		t.Fatalf("plain payload altered: %q", got)
	}
}

func TestExtractSubtitleZipPicksLargestSubtitleEntry(t *testing.T) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	files := map[string]string{
		"readme.txt":  "not a subtitle",
		"short.srt":   "1\n",
		"feature.srt": sampleSRT,
	}
	for name, contents := range files {
		entry, err := writer.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(contents)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	got, err := ExtractSubtitle(buf.Bytes())
	if err != nil {
		t.Fatalf("ExtractSubtitle: %v", err)
	}
	if string(got) != sampleSRT {
		t.Fatalf("wrong entry extracted: %q", got)
	}
}

func TestExtractSubtitleZipWithoutSubtitleFails(t *testing.T) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("notes.txt")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := entry.Write([]byte("nothing")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := ExtractSubtitle(buf.Bytes()); err == nil {
		t.Fatal("expected error for zip without subtitle entries")
	}
}

func TestExtractSubtitleGzip(t *testing.T) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write([]byte(sampleSRT)); err != nil {
		t.Fatalf("write gzip: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}

	got, err := ExtractSubtitle(buf.Bytes())
	if err != nil {
		t.Fatalf("ExtractSubtitle: %v", err)
	}
	if string(got) != sampleSRT {
		t.Fatalf("gzip payload mismatch: %q", got)
	}
}

func TestExtractSubtitleEmpty(t *testing.T) {
	if _, err := ExtractSubtitle(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

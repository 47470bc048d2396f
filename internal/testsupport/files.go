package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteClip creates a stand-in video file of the requested size. The payload
// opens with an MP4 ftyp box header and pads with a repeating byte, which is
// enough for anything that only stats, copies, or hands the file to a stubbed
// engine. A size smaller than the header writes the header alone.
func WriteClip(t testing.TB, path string, size int64) {
	t.Helper()

	header := []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2")
	if size < int64(len(header)) {
		size = int64(len(header))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	padding := bytes.Repeat([]byte{0x42}, int(size)-len(header))
	if err := os.WriteFile(path, append(header, padding...), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	pdfHeader = []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n")
)

func TestSaveStoresAllowedTypes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	receipts := NewReceipts(dir, 1024)

	cases := []struct {
		name string
		data []byte
		ext  string
	}{
		{"png", pngHeader, ".png"},
		{"pdf", pdfHeader, ".pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path, err := receipts.Save(bytes.NewReader(tc.data))
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if filepath.Dir(path) != dir || !strings.HasSuffix(path, tc.ext) {
				t.Fatalf("unexpected path %q", path)
			}
			stored, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read back: %v", err)
			}
			if !bytes.Equal(stored, tc.data) {
				t.Fatalf("stored content differs")
			}
		})
	}
}

func TestSaveRejectsBadInput(t *testing.T) {
	receipts := NewReceipts(t.TempDir(), 64)

	if _, err := receipts.Save(bytes.NewReader(nil)); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := receipts.Save(strings.NewReader("just some plain text")); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	if _, err := receipts.Save(bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestRemoveIgnoresMissingFile(t *testing.T) {
	receipts := NewReceipts(t.TempDir(), 1024)
	path, err := receipts.Save(bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := receipts.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := receipts.Remove(path); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrEmpty           = errors.New("empty file")
	ErrTooLarge        = errors.New("file exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"application/pdf",
}

// Receipts stores payment proofs on the local filesystem under generated names
type Receipts struct {
	dir      string
	maxBytes int64
}

func NewReceipts(dir string, maxBytes int64) *Receipts {
	return &Receipts{dir: dir, maxBytes: maxBytes}
}

// MaxBytes is the largest accepted file
func (r *Receipts) MaxBytes() int64 {
	return r.maxBytes
}

// Save sniffs the content type, writes the file and returns its path
func (r *Receipts) Save(src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, r.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if int64(len(data)) > r.maxBytes {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(r.dir, uuid.NewString()+mtype.Extension())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close receipt file: %w", err)
	}
	return path, nil
}

// Remove deletes a stored receipt; a missing file is not an error
func (r *Receipts) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

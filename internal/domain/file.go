package domain

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize is the largest file accepted for upload (2 MiB).
const MaxUploadSize int64 = 2 * 1024 * 1024

// sniffLen is how many leading bytes are read to detect a content type.
const sniffLen = 3072

// File is a user-selected file ready to be validated and uploaded.
type File struct {
	Name    string
	Type    string // declared MIME type, may be empty
	Size    int64
	Content io.Reader
}

// OpenFile opens the file at path and detects its MIME type from content.
// The caller must close the returned closer.
func OpenFile(path string) (*File, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, &ValidationError{FileName: filepath.Base(path), Err: ErrNoFile}
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	head = head[:n]

	file := &File{
		Name:    filepath.Base(path),
		Type:    mimetype.Detect(head).String(),
		Size:    info.Size(),
		Content: io.MultiReader(bytes.NewReader(head), f),
	}
	return file, f, nil
}

// ValidateFile applies the client-side upload rules: a file must be present,
// be PDF-like or image-like, and be no larger than maxSize bytes.
// A non-positive maxSize falls back to MaxUploadSize.
func ValidateFile(file *File, maxSize int64) error {
	if file == nil {
		return &ValidationError{Err: ErrNoFile}
	}
	if maxSize <= 0 {
		maxSize = MaxUploadSize
	}

	if !isAllowedType(file.contentType()) {
		return &ValidationError{FileName: file.Name, Err: ErrUnsupportedType}
	}
	if file.Size > maxSize {
		return &ValidationError{
			FileName: file.Name,
			Err:      fmt.Errorf("%w: %d bytes", ErrFileTooLarge, file.Size),
		}
	}
	return nil
}

// contentType returns the declared type, or sniffs one from a seekable or
// buffered reader when nothing was declared.
func (f *File) contentType() string {
	if f.Type != "" || f.Content == nil {
		return f.Type
	}

	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(f.Content, head)
	head = head[:n]
	// Put the sniffed bytes back in front of the remaining content.
	f.Content = io.MultiReader(bytes.NewReader(head), f.Content)
	f.Type = mimetype.Detect(head).String()
	return f.Type
}

func isAllowedType(mimeType string) bool {
	t := strings.ToLower(mimeType)
	return strings.Contains(t, "pdf") || strings.Contains(t, "image")
}

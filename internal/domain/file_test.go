package domain

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfHeader = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    *File
		wantErr error
	}{
		{
			name: "pdf_within_limit",
			file: &File{Name: "a.pdf", Type: "application/pdf", Size: 1024 * 1024},
		},
		{
			name: "image_exactly_at_limit",
			file: &File{Name: "a.png", Type: "image/png", Size: MaxUploadSize},
		},
		{
			name: "image_subtype_jpeg",
			file: &File{Name: "a.jpg", Type: "image/jpeg", Size: 10},
		},
		{
			name:    "missing_file",
			file:    nil,
			wantErr: ErrNoFile,
		},
		{
			name:    "text_file",
			file:    &File{Name: "notes.txt", Type: "text/plain", Size: 10},
			wantErr: ErrUnsupportedType,
		},
		{
			name:    "too_large",
			file:    &File{Name: "big.pdf", Type: "application/pdf", Size: MaxUploadSize + 1},
			wantErr: ErrFileTooLarge,
		},
		{
			name:    "no_type_no_content",
			file:    &File{Name: "mystery", Size: 10},
			wantErr: ErrUnsupportedType,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFile(tc.file, 0)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
		})
	}
}

func TestValidateFile_CustomLimit(t *testing.T) {
	file := &File{Name: "a.pdf", Type: "application/pdf", Size: 200}

	assert.NoError(t, ValidateFile(file, 200))
	assert.ErrorIs(t, ValidateFile(file, 199), ErrFileTooLarge)
}

func TestValidateFile_SniffsUndeclaredType(t *testing.T) {
	file := &File{Name: "scan", Size: int64(len(pdfHeader)), Content: bytes.NewReader(pdfHeader)}

	require.NoError(t, ValidateFile(file, 0))
	assert.Equal(t, "application/pdf", file.Type)

	// The sniffed bytes must still be readable by the uploader.
	body, err := io.ReadAll(file.Content)
	require.NoError(t, err)
	assert.Equal(t, pdfHeader, body)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "pixel.png")
	require.NoError(t, os.WriteFile(pngPath, pngHeader, 0o600))

	file, closer, err := OpenFile(pngPath)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, "pixel.png", file.Name)
	assert.Equal(t, "image/png", file.Type)
	assert.Equal(t, int64(len(pngHeader)), file.Size)
	assert.NoError(t, ValidateFile(file, 0))

	body, err := io.ReadAll(file.Content)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, body)

	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(strings.Repeat("hello ", 10)), 0o600))
	txt, txtCloser, err := OpenFile(txtPath)
	require.NoError(t, err)
	defer txtCloser.Close()
	assert.ErrorIs(t, ValidateFile(txt, 0), ErrUnsupportedType)

	_, _, err = OpenFile(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)

	_, _, err = OpenFile(dir)
	assert.ErrorIs(t, err, ErrNoFile)
}

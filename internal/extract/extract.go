// Package extract pulls plain text out of resume files.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// ErrUnsupportedFormat rejects anything but PDF and DOCX resumes.
var ErrUnsupportedFormat = errors.New("unsupported resume format (want .pdf or .docx)")

// Text extracts the plain text body of a PDF or DOCX resume.
func Text(path string) (string, error) {
	var mime string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		mime = "application/pdf"
	case ".docx":
		mime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening resume %s: %w", path, err)
	}
	defer f.Close()

	converted, err := docconv.Convert(f, mime, false)
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}

	text := strings.TrimSpace(converted.Body)
	if text == "" {
		return "", fmt.Errorf("no text could be extracted from %s", path)
	}

	return text, nil
}

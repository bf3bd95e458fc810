// Package validators holds request payload validation helpers
package validators

import (
	"errors"
	"mime/multipart"
	"slices"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type")
	ErrNoFile              = errors.New("no file provided")
)

const maxFileNameSize = 255

const fallbackContentType = "application/octet-stream"

// CheckFile validates one multipart file against the size ceiling and,
// when allowedTypes is non-empty, a MIME allow-list checked against the
// actual bytes rather than the client-declared header. On success it
// returns the opened file positioned at the start plus the content
// type to store. The caller owns the returned file.
func CheckFile(fh *multipart.FileHeader, maxSize int64, allowedTypes []string) (multipart.File, string, error) {
	if fh == nil {
		return nil, "", ErrNoFile
	}

	if len(fh.Filename) > maxFileNameSize {
		return nil, "", ErrFileNameTooLong
	}

	if fh.Size > maxSize {
		return nil, "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, "", err
	}

	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, "", err
	}

	if len(allowedTypes) > 0 && !slices.Contains(allowedTypes, mime.String()) {
		f.Close()
		return nil, "", ErrFileTypeUnsupported
	}

	ct := mime.String()
	if ct == "" || ct == fallbackContentType {
		if declared := fh.Header.Get("Content-Type"); declared != "" {
			ct = declared
		} else {
			ct = fallbackContentType
		}
	}

	return f, ct, nil
}

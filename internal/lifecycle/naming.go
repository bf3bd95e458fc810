package lifecycle

import (
	"path"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// StorageName builds the object key segment for a fresh upload as
// "{nanoid}.{ext}". The original file name never becomes part of the
// key, only its extension survives, sanitized to lowercase alphanumeric
// so that neither path traversal nor spoofed suffixes make it into
// storage. The extension is a display hint, not a security boundary.
func StorageName(fileName, contentType string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}

	return id + "." + fileExt(fileName, contentType), nil
}

// fileExt derives an extension from the file name, falling back to the
// MIME subtype and finally to a generic binary extension.
func fileExt(fileName, contentType string) string {
	ext := sanitizeExt(path.Ext(fileName))

	if ext == "" {
		if i := strings.Index(contentType, "/"); i >= 0 {
			ext = sanitizeExt(contentType[i+1:])
		}
	}

	if ext == "" {
		ext = "bin"
	}

	return ext
}

func sanitizeExt(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "."))

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}

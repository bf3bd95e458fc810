package lifecycle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExt(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		want        string
	}{
		{"plain extension", "report.pdf", "application/pdf", "pdf"},
		{"uppercase lowered", "photo.JPG", "image/jpeg", "jpg"},
		{"last segment only", "archive.tar.gz", "application/gzip", "gz"},
		{"traversal stripped", "../../etc/passwd.SH", "", "sh"},
		{"junk characters dropped", "weird.p?n*g", "", "png"},
		{"no extension falls back to subtype", "README", "image/png", "png"},
		{"subtype sanitized", "noext", "application/x-tar", "xtar"},
		{"nothing usable", "noext", "", "bin"},
		{"dot only", "file.", "", "bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fileExt(tt.fileName, tt.contentType))
		})
	}
}

func TestStorageNameUnique(t *testing.T) {
	a, err := StorageName("same.txt", "text/plain")
	require.NoError(t, err)
	b, err := StorageName("same.txt", "text/plain")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".txt"))
	assert.NotContains(t, a, "/")
}

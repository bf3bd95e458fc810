package validators

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, name string, content []byte, contentType string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	require.NoError(t, err)

	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := multipart.NewReader(&buf, w.Boundary())
	form, err := r.ReadForm(32 << 20)
	require.NoError(t, err)

	return form.File["file"][0]
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestCheckFileTooLarge(t *testing.T) {
	fh := makeFileHeader(t, "big.bin", bytes.Repeat([]byte("x"), 2048), "application/octet-stream")

	_, _, err := CheckFile(fh, 1024, nil)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestCheckFileNameTooLong(t *testing.T) {
	fh := makeFileHeader(t, strings.Repeat("a", 300)+".txt", []byte("x"), "text/plain")

	_, _, err := CheckFile(fh, 1024, nil)
	assert.ErrorIs(t, err, ErrFileNameTooLong)
}

func TestCheckFileNil(t *testing.T) {
	_, _, err := CheckFile(nil, 1024, nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestCheckFileAllowListUsesBytesNotHeader(t *testing.T) {
	// Declared as an image but the content is plain text
	fh := makeFileHeader(t, "fake.png", []byte("just text"), "image/png")

	_, _, err := CheckFile(fh, 1024, []string{"image/png", "image/jpeg"})
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
}

func TestCheckFileDetectsImage(t *testing.T) {
	fh := makeFileHeader(t, "real.png", pngBytes, "application/octet-stream")

	f, ct, err := CheckFile(fh, 1024, []string{"image/png"})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "image/png", ct)

	// The reader must be rewound for the subsequent storage write
	buf := make([]byte, 4)
	_, err = f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, pngBytes[:4], buf)
}

func TestCheckFileFallsBackToDeclaredType(t *testing.T) {
	// Content bytes are indistinct, declared header wins
	fh := makeFileHeader(t, "data.custom", []byte{0x00, 0x01, 0x02, 0x03}, "application/x-custom")

	f, ct, err := CheckFile(fh, 1024, nil)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "application/x-custom", ct)
}

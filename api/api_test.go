package api

import (
	"airdropweb/files-api/internal/lifecycle"
	"airdropweb/files-api/middleware"
	"airdropweb/files-api/model"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; ok {
		return errors.New("object already exists")
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.objects[key] = b
	return nil
}

func (s *fakeStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

func (s *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (s *fakeStore) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://upload.example/" + key, nil
}

func setupAPI(t *testing.T) (*API, *fakeStore) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("upload.max_size", int64(1024))
	viper.Set("upload.photo_max_size", int64(512))
	viper.Set("upload.photo_allowed_types", []string{"image/jpeg", "image/png", "image/gif", "image/webp"})
	viper.Set("share.url_ttl", 3600)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.File{}))

	store := newFakeStore()

	a := &API{
		DB:     db,
		Router: gin.New(),
		Store:  store,
		Files:  lifecycle.New(db, store, time.Hour),
	}

	a.Router.Use(gin.Recovery(), middleware.NewRequestIDMiddleware())
	a.registerRoutes()

	return a, store
}

func authToken(t *testing.T, userID string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, a *API, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+authToken(t, userID))
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, a *API, path, userID string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, content := range files {
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+authToken(t, userID))

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestListRequiresAuth(t *testing.T) {
	a, _ := setupAPI(t)

	w := doJSON(t, a, http.MethodGet, "/api/files", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadNoFiles(t *testing.T) {
	a, _ := setupAPI(t)

	w := doMultipart(t, a, "/api/files", "u1", map[string][]byte{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadPartialSuccess(t *testing.T) {
	a, _ := setupAPI(t)

	w := doMultipart(t, a, "/api/files", "u1", map[string][]byte{
		"ok.txt":  []byte("small"),
		"big.bin": bytes.Repeat([]byte("x"), 2000),
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := parseBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["uploaded"], 1)
	require.Len(t, body["errors"], 1)
	assert.Contains(t, body["errors"].([]any)[0], "big.bin")
}

func TestPhotoUploadRejectsNonImage(t *testing.T) {
	a, _ := setupAPI(t)

	w := doMultipart(t, a, "/api/photos", "u1", map[string][]byte{
		"note.txt": []byte("not an image"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := parseBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Len(t, body["errors"], 1)
	assert.Empty(t, body["uploaded"])
}

func TestRegisterForeignPathForbidden(t *testing.T) {
	a, store := setupAPI(t)
	store.objects["u2/x.png"] = []byte("data")

	w := doJSON(t, a, http.MethodPost, "/api/files/register", "u1", gin.H{
		"filePath": "u2/x.png",
		"fileName": "x.png",
		"size":     4,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadURLFlow(t *testing.T) {
	a, store := setupAPI(t)

	w := doJSON(t, a, http.MethodPost, "/api/files/upload-url", "u1", gin.H{
		"fileName":    "direct.png",
		"contentType": "image/png",
		"size":        100,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := parseBody(t, w)
	filePath := body["filePath"].(string)
	assert.NotEmpty(t, body["signedUrl"])
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "direct.png", body["fileName"])

	// Simulate the client pushing through the presigned URL, then register
	store.objects[filePath] = []byte("data")

	w = doJSON(t, a, http.MethodPost, "/api/files/register", "u1", gin.H{
		"filePath":    filePath,
		"fileName":    "direct.png",
		"contentType": "image/png",
		"size":        4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body = parseBody(t, w)
	file := body["file"].(map[string]any)
	assert.Equal(t, "direct.png", file["name"])
	assert.Equal(t, filePath, file["storage_path"])
}

func TestDeleteFlow(t *testing.T) {
	a, _ := setupAPI(t)

	w := doMultipart(t, a, "/api/files", "u1", map[string][]byte{
		"gone.txt": []byte("bye"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	uploaded := parseBody(t, w)["uploaded"].([]any)
	require.Len(t, uploaded, 1)

	w = doJSON(t, a, http.MethodDelete, "/api/files?id=1", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, parseBody(t, w)["success"])

	w = doJSON(t, a, http.MethodGet, "/api/files", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, parseBody(t, w)["files"])
}

func TestDeleteMissingID(t *testing.T) {
	a, _ := setupAPI(t)

	w := doJSON(t, a, http.MethodDelete, "/api/files", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchMissingID(t *testing.T) {
	a, _ := setupAPI(t)

	w := doJSON(t, a, http.MethodPatch, "/api/files", "u1", gin.H{"favorite": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPatchFavorite(t *testing.T) {
	a, _ := setupAPI(t)

	w := doMultipart(t, a, "/api/files", "u1", map[string][]byte{
		"fav.txt": []byte("data"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, http.MethodPatch, "/api/files", "u1", gin.H{
		"id":       1,
		"favorite": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	file := parseBody(t, w)["file"].(map[string]any)
	assert.Equal(t, true, file["favorite"])
}

func TestShareMissingToken(t *testing.T) {
	a, _ := setupAPI(t)

	w := doJSON(t, a, http.MethodGet, "/api/share", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareUnknownToken(t *testing.T) {
	a, _ := setupAPI(t)

	w := doJSON(t, a, http.MethodGet, "/api/share?token=nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSharePayloadExcludesPrivateFields(t *testing.T) {
	a, _ := setupAPI(t)

	w := doMultipart(t, a, "/api/files", "u1", map[string][]byte{
		"shared.txt": []byte("data"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, http.MethodPatch, "/api/files", "u1", gin.H{
		"id":                  1,
		"tags":                []string{"secret"},
		"generate_share_link": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	token := parseBody(t, w)["file"].(map[string]any)["share_token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(t, a, http.MethodGet, "/api/share?token="+token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	raw := w.Body.String()
	assert.NotContains(t, raw, "share_token")
	assert.NotContains(t, raw, "tags")
	assert.NotContains(t, raw, "owner")
	assert.NotContains(t, raw, "favorite")

	file := parseBody(t, w)["file"].(map[string]any)
	assert.Equal(t, "shared.txt", file["name"])
	assert.NotEmpty(t, file["url"])
}

func TestOwnerIsolationOverHTTP(t *testing.T) {
	a, _ := setupAPI(t)

	w := doMultipart(t, a, "/api/files", "u1", map[string][]byte{
		"mine.txt": []byte("data"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/files", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, parseBody(t, w)["files"])

	// u2 can neither patch nor delete u1's record
	w = doJSON(t, a, http.MethodPatch, "/api/files", "u2", gin.H{"id": 1, "favorite": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, a, http.MethodDelete, "/api/files?id=1", "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

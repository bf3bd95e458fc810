// Package lifecycle keeps a file's metadata record and its storage
// object consistent across create, update and delete, and enforces
// that one user's records stay invisible to everyone else.
package lifecycle

import (
	"airdropweb/files-api/model"
	"airdropweb/files-api/storage"
	"airdropweb/files-api/util"
	"airdropweb/files-api/validators"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Validity of presigned direct-upload URLs
const uploadURLTTL = 15 * time.Minute

const shareTokenBytes = 24

type Coordinator struct {
	DB     *gorm.DB
	Store  storage.ObjectStore
	URLTTL time.Duration
}

func New(db *gorm.DB, store storage.ObjectStore, urlTTL time.Duration) *Coordinator {
	return &Coordinator{
		DB:     db,
		Store:  store,
		URLTTL: urlTTL,
	}
}

// UploadPolicy is the per-endpoint size ceiling and optional MIME
// allow-list. The photo endpoint uses a stricter policy than generic
// file uploads.
type UploadPolicy struct {
	MaxSize      int64
	AllowedTypes []string
}

type UploadResult struct {
	Uploaded []model.File
	Errors   []string
}

// Upload ingests a batch of files for one owner. Files are processed
// independently so one bad file doesn't sink its siblings: failures end
// up as human-readable strings in the result instead of aborting the
// request. The blob is always written before the metadata row. If the
// row insert fails the just-written blob is deleted again best-effort,
// which keeps dangling records impossible at the cost of a possible
// orphaned blob.
func (c *Coordinator) Upload(ctx context.Context, ownerID string, files []*multipart.FileHeader, description string, policy UploadPolicy) *UploadResult {
	res := &UploadResult{}

	for _, fh := range files {
		rec, err := c.uploadOne(ctx, ownerID, fh, description, policy)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", fh.Filename, err))
			continue
		}

		res.Uploaded = append(res.Uploaded, *rec)
	}

	return res
}

func (c *Coordinator) uploadOne(ctx context.Context, ownerID string, fh *multipart.FileHeader, description string, policy UploadPolicy) (*model.File, error) {
	f, contentType, err := validators.CheckFile(fh, policy.MaxSize, policy.AllowedTypes)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name, err := StorageName(fh.Filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate storage name, %w", err)
	}

	key := ownerID + "/" + name

	if err := c.Store.Put(ctx, key, f, fh.Size, contentType); err != nil {
		zap.L().Error("Failed to upload file", zap.String("key", key), zap.Error(err))
		return nil, errors.New("upload to storage failed")
	}

	rec := &model.File{
		OwnerID:      ownerID,
		StoragePath:  key,
		OriginalName: fh.Filename,
		ContentType:  contentType,
		Size:         fh.Size,
		Description:  description,
		Tags:         model.StringSlice{},
		CreatedAt:    time.Now().Unix(),
	}

	if err := c.DB.Create(rec).Error; err != nil {
		zap.L().Error("Failed to save file record to db", zap.String("key", key), zap.Error(err))

		// The blob made it to storage but the record didn't. Undo the
		// blob so readers never see a record without a backing object.
		if derr := c.Store.Delete(ctx, key); derr != nil {
			zap.L().Error("Failed to clean up blob after failed insert", zap.String("key", key), zap.Error(derr))
		}

		return nil, errors.New("failed to save file record")
	}

	return rec, nil
}

type RegisterInput struct {
	FilePath    string
	FileName    string
	ContentType string
	Size        int64
	Description string
}

// Register attaches a metadata record to a blob that was already
// placed through a presigned direct upload. The path has to sit inside
// the caller's own prefix and the blob has to actually exist, otherwise
// the record would dangle.
func (c *Coordinator) Register(ctx context.Context, ownerID string, in RegisterInput) (*model.File, error) {
	if in.FilePath == "" || in.FileName == "" {
		return nil, fmt.Errorf("%w: filePath and fileName are required", ErrInvalid)
	}

	if in.Size < 0 {
		return nil, fmt.Errorf("%w: size can't be negative", ErrInvalid)
	}

	if !strings.HasPrefix(in.FilePath, ownerID+"/") {
		return nil, ErrForbidden
	}

	exists, err := c.Store.Exists(ctx, in.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check object, %w", err)
	}

	if !exists {
		return nil, ErrNotFound
	}

	ct := in.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	rec := &model.File{
		OwnerID:      ownerID,
		StoragePath:  in.FilePath,
		OriginalName: in.FileName,
		ContentType:  ct,
		Size:         in.Size,
		Description:  in.Description,
		Tags:         model.StringSlice{},
		CreatedAt:    time.Now().Unix(),
	}

	if err := c.DB.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to save file record, %w", err)
	}

	return rec, nil
}

type UploadURL struct {
	SignedURL string `json:"signedUrl"`
	Token     string `json:"token"`
	FilePath  string `json:"filePath"`
	FileName  string `json:"fileName"`
}

// UploadURL hands out a presigned PUT URL so the client can push the
// blob straight to storage and register the metadata afterwards. The
// returned token is an opaque upload reference, the URL itself carries
// the credential.
func (c *Coordinator) UploadURL(ctx context.Context, ownerID, fileName, contentType string, size int64, policy UploadPolicy) (*UploadURL, error) {
	if fileName == "" {
		return nil, fmt.Errorf("%w: fileName is required", ErrInvalid)
	}

	if size > policy.MaxSize {
		return nil, fmt.Errorf("%w: file too large", ErrInvalid)
	}

	name, err := StorageName(fileName, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate storage name, %w", err)
	}

	key := ownerID + "/" + name

	signed, err := c.Store.PresignPut(ctx, key, contentType, uploadURLTTL)
	if err != nil {
		return nil, err
	}

	token, err := util.GenerateToken(16)
	if err != nil {
		return nil, err
	}

	return &UploadURL{
		SignedURL: signed,
		Token:     token,
		FilePath:  key,
		FileName:  fileName,
	}, nil
}

type ListedFile struct {
	model.File
	URL string `json:"url"`
}

// List returns the owner's records newest first, each with a
// short-lived download URL. A presign failure on one record degrades
// that record to an empty URL instead of failing the listing.
func (c *Coordinator) List(ctx context.Context, ownerID string) ([]ListedFile, error) {
	var files []model.File

	err := c.DB.
		Where("owner_id = ?", ownerID).
		Order("created_at desc, id desc").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up files, %w", err)
	}

	out := make([]ListedFile, 0, len(files))
	for _, f := range files {
		url, err := c.Store.SignedURL(ctx, f.StoragePath, c.URLTTL)
		if err != nil {
			zap.L().Warn("Failed to presign download URL", zap.String("key", f.StoragePath), zap.Error(err))
			url = ""
		}

		out = append(out, ListedFile{File: f, URL: url})
	}

	return out, nil
}

type UpdateInput struct {
	Favorite      *bool
	Tags          *[]string
	GenerateShare bool
	RevokeShare   bool
}

// Update applies a partial mutation to one owned record. Only fields
// present in the input change. When generate and revoke are both
// requested, revoke wins: it's the safer reading of an ambiguous
// request.
func (c *Coordinator) Update(ctx context.Context, ownerID string, id uint, in UpdateInput) (*model.File, error) {
	var file model.File

	err := c.DB.
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to fetch file, %w", err)
	}

	updates := map[string]any{}

	if in.Favorite != nil {
		updates["favorite"] = *in.Favorite
	}

	if in.Tags != nil {
		updates["tags"] = model.StringSlice(*in.Tags)
	}

	switch {
	case in.RevokeShare:
		updates["share_token"] = nil
	case in.GenerateShare:
		// Replaces any existing token, old links die immediately
		token, err := util.GenerateToken(shareTokenBytes)
		if err != nil {
			return nil, err
		}
		updates["share_token"] = token
	}

	if len(updates) == 0 {
		return &file, nil
	}

	err = c.DB.
		Model(&model.File{}).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Updates(updates).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to update file, %w", err)
	}

	err = c.DB.
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&file).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload file, %w", err)
	}

	return &file, nil
}

// Delete removes the blob first and the record second. A failed blob
// delete is logged but doesn't stop the record delete: a dangling
// record the user believes gone is the worse failure mode, an orphaned
// blob merely wastes space.
func (c *Coordinator) Delete(ctx context.Context, ownerID string, id uint) error {
	var file model.File

	err := c.DB.
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to fetch file, %w", err)
	}

	if err := c.Store.Delete(ctx, file.StoragePath); err != nil {
		zap.L().Warn("Failed to delete blob, removing record anyway", zap.String("key", file.StoragePath), zap.Error(err))
	}

	err = c.DB.
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&model.File{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to delete file record, %w", err)
	}

	return nil
}

// SharedFile is the reduced public projection of a record. It leaves
// out the owner, tags, favorite flag and the token itself.
type SharedFile struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Description string `json:"description,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	URL         string `json:"url"`
}

// ResolveShare maps a public token to its record without any identity
// check. A revoked token and a token that never existed are both plain
// not-found.
func (c *Coordinator) ResolveShare(ctx context.Context, token string) (*SharedFile, error) {
	var file model.File

	err := c.DB.
		Where("share_token = ?", token).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to look up share token, %w", err)
	}

	url, err := c.Store.SignedURL(ctx, file.StoragePath, c.URLTTL)
	if err != nil {
		zap.L().Warn("Failed to presign download URL", zap.String("key", file.StoragePath), zap.Error(err))
		url = ""
	}

	return &SharedFile{
		ID:          file.ID,
		Name:        file.OriginalName,
		ContentType: file.ContentType,
		Size:        file.Size,
		Description: file.Description,
		CreatedAt:   file.CreatedAt,
		URL:         url,
	}, nil
}

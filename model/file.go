// Package model defines database models
package model

type File struct {
	ID      uint   `gorm:"primaryKey;autoIncrement;index" json:"id"`
	OwnerID string `gorm:"index;not null" json:"-"`

	// Since different users may upload files with the same name the S3
	// object lives under a generated key prefixed with the owner's ID.
	// The prefix doubles as the ownership boundary for storage paths.
	StoragePath string `gorm:"not null" json:"storage_path"`

	// Original file name before turning it into a storage key
	OriginalName string `json:"name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Description  string `json:"description,omitempty"`

	Favorite bool        `json:"favorite"`
	Tags     StringSlice `json:"tags"`

	// When set the record is publicly readable through /api/share.
	// The token is the only access control on that path, so it must
	// come from crypto/rand.
	ShareToken *string `gorm:"index" json:"share_token,omitempty"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`
}

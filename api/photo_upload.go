package api

import (
	"airdropweb/files-api/internal/lifecycle"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// PhotoUpload is the image-only upload variant: smaller ceiling and a
// MIME allow-list checked against the actual bytes.
func (a *API) PhotoUpload(c *gin.Context) {
	a.handleUpload(c, lifecycle.UploadPolicy{
		MaxSize:      viper.GetInt64("upload.photo_max_size"),
		AllowedTypes: viper.GetStringSlice("upload.photo_allowed_types"),
	})
}

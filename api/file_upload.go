package api

import (
	"airdropweb/files-api/internal/lifecycle"
	"airdropweb/files-api/model"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// FileUpload ingests one or more files from a multipart form. Files
// are processed independently: the response reports created records
// and per-file error strings side by side.
func (a *API) FileUpload(c *gin.Context) {
	a.handleUpload(c, lifecycle.UploadPolicy{
		MaxSize: viper.GetInt64("upload.max_size"),
	})
}

func (a *API) handleUpload(c *gin.Context, policy lifecycle.UploadPolicy) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to parse multipart form", zap.Error(err))
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	description := c.PostForm("description")

	res := a.Files.Upload(c.Request.Context(), userID, files, description, policy)

	uploaded := res.Uploaded
	if uploaded == nil {
		uploaded = []model.File{}
	}

	resp := gin.H{
		"success":  len(res.Uploaded) > 0,
		"uploaded": uploaded,
	}

	if len(res.Errors) > 0 {
		resp["errors"] = res.Errors
	}

	c.JSON(http.StatusOK, resp)
}

package api

import (
	"airdropweb/files-api/internal/lifecycle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type uploadURLBody struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// FileUploadURL hands out a presigned PUT URL so the client can upload
// straight to storage, then register the metadata separately.
func (a *API) FileUploadURL(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data uploadURLBody
	if err := c.BindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	url, err := a.Files.UploadURL(c.Request.Context(), userID, data.FileName, data.ContentType, data.Size, lifecycle.UploadPolicy{
		MaxSize: viper.GetInt64("upload.max_size"),
	})
	if err != nil {
		if errors.Is(err, lifecycle.ErrInvalid) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to presign upload URL", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, url)
}
